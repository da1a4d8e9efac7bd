package rendering

import "strings"

// latexReplacer maps LaTeX special characters to their text-mode commands.
// Angle brackets are included since the default OT1 encoding prints them as ¡ and ¿.
var latexReplacer = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`%`, `\%`,
	`#`, `\#`,
	`_`, `\_`,
	`^`, `\textasciicircum{}`,
	`~`, `\textasciitilde{}`,
	`<`, `\textless{}`,
	`>`, `\textgreater{}`,
	"\r\n", `\newline{}`,
	"\n", `\newline{}`,
)

// EscapeLaTeX makes user text safe inside a LaTeX document body. Line breaks in
// multi-line answers become \newline.
func EscapeLaTeX(text string) string {
	return latexReplacer.Replace(text)
}
