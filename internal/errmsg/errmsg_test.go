package errmsg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithTitles(t *testing.T) {
	got := WithTitles(Response{Data: []byte(`{"field1":"bad","field2":"worse"}`)})

	lines := strings.Split(got, "\n")
	assert.Equal(t, []string{"field1: bad", "field2: worse"}, lines)
}

func TestWithTitlesKeepsServerOrderAndJoinsArrays(t *testing.T) {
	got := WithTitles(Response{Data: []byte(`{"title":["This field is required."],"body":["Too short.","Needs a heading."]}`)})

	assert.Equal(t, "title: This field is required.\nbody: Too short., Needs a heading.", got)
}

func TestWithTitlesArrayBody(t *testing.T) {
	got := WithTitles(Response{Data: []byte(`["first","second"]`)})
	assert.Equal(t, "0: first\n1: second", got)
}

func TestWithTitlesFallbacks(t *testing.T) {
	assert.Equal(t, "Service down", WithTitles(Response{StatusText: "Bad Gateway", Data: []byte(`"Service down"`)}))
	assert.Equal(t, "<html>oops</html>", WithTitles(Response{StatusText: "Bad Gateway", Data: []byte("<html>oops</html>")}))
	assert.Equal(t, "Bad Gateway", WithTitles(Response{StatusText: "Bad Gateway"}))
	assert.Equal(t, "Bad Request", WithTitles(Response{StatusText: "Bad Request", Data: []byte(`{}`)}))
}

func TestMessagesFriendlyReplacement(t *testing.T) {
	got := Messages(Response{
		Status:     403,
		StatusText: "Forbidden",
		Data:       []byte(`{"non_field_errors":["CSRF Failed: CSRF token missing or incorrect."]}`),
	})

	assert.Equal(t, Message{StatusText: "Forbidden", Info: "You need to close your admin session."}, got)
}

func TestMessagesFirstOfEachField(t *testing.T) {
	got := Messages(Response{
		StatusText: "Bad Request",
		Data:       []byte(`{"title":["Required.","Ignored."],"detail":"Not allowed."}`),
	})

	assert.Equal(t, "Bad Request", got.StatusText)
	assert.Equal(t, "Required.\nNot allowed.", got.Info)
}

func TestMessagesUnmappedPassThrough(t *testing.T) {
	got := Messages(Response{StatusText: "Unauthorized", Data: []byte(`{"detail":"Signature has expired."}`)})
	assert.Equal(t, "Signature has expired.", got.Info)
}

func TestMessagesFallbacks(t *testing.T) {
	assert.Equal(t, Message{StatusText: "Forbidden", Info: "You need to close your admin session."},
		Messages(Response{StatusText: "Forbidden", Data: []byte(`"CSRF Failed: CSRF token missing or incorrect."`)}))
	assert.Equal(t, Message{StatusText: "Internal Server Error", Info: "Internal Server Error"},
		Messages(Response{StatusText: "Internal Server Error"}))
	assert.Equal(t, Message{StatusText: "Bad Request", Info: "Bad Request"},
		Messages(Response{StatusText: "Bad Request", Data: []byte(`{"errors":[]}`)}))
}
