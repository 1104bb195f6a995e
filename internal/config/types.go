package config

import (
	"pipesched/internal/schedule"
)

// Record is the persisted configuration document.
//
// Sections are replaced as a whole (see the With* helpers); nothing edits a
// single field of a loaded Record in place.
type Record struct {
	// BusinessTopics are the topics news are searched for, in order.
	BusinessTopics []string `json:"business_topics"`
	// TextModel handles text-only input, FileModel text plus files.
	TextModel    string `json:"text_model"`
	FileModel    string `json:"file_model"`
	VerboseLevel int    `json:"verbose_level"`

	SearchConf    SearchConf    `json:"search_conf"`
	SynthesisConf SynthesisConf `json:"synthesis_conf"`

	Schedules []schedule.Schedule `json:"schedules"`

	EmailInfo EmailInfo `json:"email_info"`
}

// SearchConf configures the query generation stage.
type SearchConf struct {
	SystemPrompt string `json:"system_prompt"`
	MaxPrompts   int    `json:"max_prompts"`
}

// SynthesisConf configures the summarisation stage.
type SynthesisConf struct {
	SystemPrompt string `json:"system_prompt"`
	MaxLen       int    `json:"max_len"`
}

// EmailInfo configures delivery of results by email.
//
// SrcAddress should be a burner account: its password lives in this file.
type EmailInfo struct {
	DstAddresses []string `json:"dst_addresses"`
	SrcAddress   string   `json:"src_address"`
	SrcPasswd    string   `json:"src_passwd"`
	SrcProvider  string   `json:"src_provider"`
}

func (r *Record) clone() *Record {
	cp := *r
	cp.BusinessTopics = append([]string(nil), r.BusinessTopics...)
	cp.Schedules = append([]schedule.Schedule(nil), r.Schedules...)
	cp.EmailInfo.DstAddresses = append([]string(nil), r.EmailInfo.DstAddresses...)
	return &cp
}

func (r *Record) WithBusinessTopics(topics []string) *Record {
	cp := r.clone()
	cp.BusinessTopics = append([]string(nil), topics...)
	return cp
}

func (r *Record) WithModels(text, file string) *Record {
	cp := r.clone()
	cp.TextModel, cp.FileModel = text, file
	return cp
}

func (r *Record) WithVerboseLevel(level int) *Record {
	cp := r.clone()
	cp.VerboseLevel = level
	return cp
}

func (r *Record) WithSearchConf(c SearchConf) *Record {
	cp := r.clone()
	cp.SearchConf = c
	return cp
}

func (r *Record) WithSynthesisConf(c SynthesisConf) *Record {
	cp := r.clone()
	cp.SynthesisConf = c
	return cp
}

func (r *Record) WithSchedules(s []schedule.Schedule) *Record {
	cp := r.clone()
	cp.Schedules = append([]schedule.Schedule(nil), s...)
	return cp
}

func (r *Record) WithEmailInfo(e EmailInfo) *Record {
	cp := r.clone()
	cp.EmailInfo = e
	cp.EmailInfo.DstAddresses = append([]string(nil), e.DstAddresses...)
	return cp
}

// Schedule returns the schedule with the given name.
func (r *Record) Schedule(name string) (schedule.Schedule, bool) {
	for _, s := range r.Schedules {
		if s.Name == name {
			return s, true
		}
	}
	return schedule.Schedule{}, false
}
