// Package errmsg flattens structured API error bodies into text fit for a
// toast.
package errmsg

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Response is a failed API answer: its status and the raw JSON body.
type Response struct {
	Status     int
	StatusText string
	Data       []byte
}

type Message struct {
	StatusText string `json:"statusText"`
	Info       string `json:"info"`
}

// Friendly replaces raw backend messages with wording meant for panel users.
var Friendly = map[string]string{
	"CSRF Failed: CSRF token missing or incorrect.": "You need to close your admin session.",
}

// WithTitles renders one "field: value" line per field of the body, in the
// order the server sent them. Array values are joined with ", ".
func WithTitles(resp Response) string {
	body := parse(resp.Data)
	if !body.IsObject() && !body.IsArray() {
		return fallback(body, resp.StatusText)
	}

	var lines []string
	for _, f := range fields(body) {
		lines = append(lines, f.name+": "+joined(f.value))
	}
	if len(lines) == 0 {
		return resp.StatusText
	}
	return strings.Join(lines, "\n")
}

// Messages keeps only the first message of each field, drops field names and
// maps known raw messages through Friendly.
func Messages(resp Response) Message {
	body := parse(resp.Data)
	if !body.IsObject() && !body.IsArray() {
		return Message{StatusText: resp.StatusText, Info: friendly(fallback(body, resp.StatusText))}
	}

	var info []string
	for _, f := range fields(body) {
		if !f.value.IsArray() {
			info = append(info, f.value.String())
			continue
		}
		if items := f.value.Array(); len(items) > 0 {
			info = append(info, items[0].String())
		}
	}
	if len(info) == 0 {
		return Message{StatusText: resp.StatusText, Info: resp.StatusText}
	}

	return Message{
		StatusText: resp.StatusText,
		Info:       friendly(strings.Join(info, "\n")),
	}
}

type field struct {
	name  string
	value gjson.Result
}

// fields lists an object's members in document order, or an array's items
// named by index.
func fields(body gjson.Result) []field {
	var out []field
	if body.IsArray() {
		for i, item := range body.Array() {
			out = append(out, field{name: strconv.Itoa(i), value: item})
		}
		return out
	}
	body.ForEach(func(key, value gjson.Result) bool {
		out = append(out, field{name: key.String(), value: value})
		return true
	})
	return out
}

func friendly(info string) string {
	if mapped, ok := Friendly[info]; ok {
		return mapped
	}
	return info
}

func parse(data []byte) gjson.Result {
	if !gjson.ValidBytes(data) {
		return gjson.Result{Type: gjson.String, Str: strings.TrimSpace(string(data))}
	}
	return gjson.ParseBytes(data)
}

func fallback(body gjson.Result, statusText string) string {
	if s := strings.TrimSpace(body.String()); s != "" {
		return s
	}
	return statusText
}

func joined(value gjson.Result) string {
	if !value.IsArray() {
		return value.String()
	}
	var parts []string
	for _, item := range value.Array() {
		parts = append(parts, item.String())
	}
	return strings.Join(parts, ", ")
}
