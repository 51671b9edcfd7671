package server

import (
	"bytes"
	"io"

	"github.com/dimiro1/banner"
)

// PrintBanner writes the startup banner with the build version and listen
// address to w.
func PrintBanner(w io.Writer, addr string) {
	tpl := "{{ .Title \"visemes\" \"\" 0 }}\n" +
		"Version: " + buildVersion() + "\n" +
		"Listening on " + addr + "\n" +
		"GoVersion: {{ .GoVersion }}\n"
	banner.Init(w, true, false, bytes.NewBufferString(tpl))
}
