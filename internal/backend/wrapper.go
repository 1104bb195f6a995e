package backend

import (
	"bytes"
	"strings"
	"text/template"
)

// intervalWrapper gives launchd true every-N-days semantics: launchd fires it
// daily, it compares whole elapsed days against the last-run stamp. The
// stamp is the firing time, so a slow command does not push the next run.
var intervalWrapper = template.Must(template.New("wrapper").Funcs(template.FuncMap{
	"quote": shellQuote,
}).Parse(`#!/bin/bash
# Generated by pipesched for schedule {{ .Name }}. Do not edit.
INTERVAL_DAYS={{ .Days }}
STATEFILE={{ quote .StateFile }}
NOW=$(date +%s)
LAST=0
if [ -f "$STATEFILE" ]; then
	LAST=$(cat "$STATEFILE")
fi
case "$LAST" in
	''|*[!0-9]*) LAST=0 ;;
esac
ELAPSED=$(( (NOW - LAST) / 86400 ))
if [ "$ELAPSED" -ge "$INTERVAL_DAYS" ]; then
	{{ .Command }}
	STATUS=$?
	mkdir -p {{ quote .StateDir }}
	echo "$NOW" > "$STATEFILE"
	exit $STATUS
fi
`))

type wrapperData struct {
	Name      string
	Days      int
	Command   string
	StateFile string
	StateDir  string
}

func renderWrapper(d wrapperData) ([]byte, error) {
	var buf bytes.Buffer
	if err := intervalWrapper.Execute(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// shellQuote single-quotes s for bash.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
