package export

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// HTMLSink writes one self-contained HTML document per conversation. Styles
// are inline; media references the copied attachment paths relative to the
// export directory.
type HTMLSink struct {
	dir  string
	used map[string]bool

	conv  *Conversation
	items []*Item
}

// NewHTMLSink creates the export directory and returns an HTML sink.
func NewHTMLSink(dir string) (*HTMLSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &HTMLSink{dir: dir, used: make(map[string]bool)}, nil
}

func (s *HTMLSink) BeginConversation(c *Conversation) error {
	s.conv = c
	s.items = s.items[:0]
	return nil
}

func (s *HTMLSink) WriteMessage(it *Item) error {
	s.items = append(s.items, it)
	return nil
}

func (s *HTMLSink) EndConversation(c *Conversation) error {
	base := safeFileName(c.Name)
	name := base + ".html"
	if s.used[name] {
		name = base + "-" + strconv.FormatInt(c.ID, 10) + ".html"
	}
	s.used[name] = true

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return err
	}
	data := struct {
		Conv  *Conversation
		Items []*Item
	}{Conv: c, Items: s.items}
	if err := pageTemplate.Execute(f, data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (s *HTMLSink) Close(*Summary) error { return nil }

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"fmtTime": func(t time.Time) string { return t.Format(timeFormat) },
	"join":    strings.Join,
}).Parse(htmlPage))

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Conv.Name}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, sans-serif; background: #f2f2f7; margin: 0 auto; max-width: 46rem; padding: 1rem; }
h1 { font-size: 1.2rem; }
.participants { color: #8e8e93; font-size: 0.85rem; margin-top: -0.6rem; }
.msg { margin: 0.5rem 0; max-width: 75%; }
.from-me { margin-left: auto; text-align: right; }
.bubble { border-radius: 1rem; padding: 0.45rem 0.8rem; background: #e5e5ea; display: inline-block; text-align: left; white-space: pre-wrap; word-break: break-word; }
.from-me .bubble { background: #007aff; color: #fff; }
.meta { font-size: 0.72rem; color: #8e8e93; margin: 0.1rem 0.3rem; }
.announcement { text-align: center; color: #8e8e93; font-size: 0.8rem; margin: 0.9rem 0; }
.reply-context { font-size: 0.78rem; color: #8e8e93; border-left: 2px solid #c7c7cc; padding-left: 0.5rem; margin: 0.15rem 0.3rem; }
.reactions { font-size: 0.85rem; margin: 0.1rem 0.3rem; }
.missing { color: #b33; font-style: italic; }
img, video { max-width: 100%; border-radius: 0.6rem; }
.preview { border: 1px solid #d1d1d6; border-radius: 0.6rem; padding: 0.5rem 0.7rem; background: #fff; color: #000; display: inline-block; text-align: left; }
.preview .site { color: #8e8e93; font-size: 0.75rem; }
</style>
</head>
<body>
<h1>{{.Conv.Name}}</h1>
{{if .Conv.Participants}}<p class="participants">{{join .Conv.Participants ", "}}</p>{{end}}
{{range .Items}}{{if .Announcement}}<div class="announcement">{{fmtTime .SentAt}} &middot; {{.Announcement}}</div>
{{else}}<div class="msg{{if .FromMe}} from-me{{end}}">
<div class="meta">{{.Sender}} &middot; {{fmtTime .SentAt}}{{if .Edited}} &middot; edited{{end}}{{if .Effect}} &middot; sent with {{.Effect}}{{end}}</div>
{{if .ReplyTo}}<div class="reply-context">replying to {{if .ReplyToSender}}{{.ReplyToSender}}{{else}}an earlier message{{end}}{{with .ReplyToSnippet}}: &ldquo;{{.}}&rdquo;{{end}}</div>{{end}}
{{if .Unsent}}<div class="bubble missing">message unsent</div>{{end}}
{{if and .DecodeFailed (not .Segments)}}<div class="bubble missing">failed to decode message body</div>{{end}}
{{range .Segments}}{{if .Attachment}}{{template "attachment" .Attachment}}{{else if .Preview}}{{template "preview" .Preview}}{{else}}<div class="bubble">{{.Text}}</div>{{end}}
{{if .Reactions}}<div class="reactions">{{range .Reactions}}<span title="{{.Kind}} by {{.Sender}}">{{.Kind.Emoji}}</span>{{end}}</div>{{end}}
{{if .Replies}}<div class="meta">{{len .Replies}} replies, from {{join .Replies ", "}}</div>{{end}}
{{end}}</div>
{{end}}{{end}}
</body>
</html>
{{define "attachment"}}{{if .Missing}}<div class="bubble missing">missing: {{.Name}}</div>
{{else if .IsImage}}<a href="{{.Path}}"><img src="{{.Path}}" alt="{{.Name}}"></a>{{if .Sticker}}<div class="meta">sticker: {{.Sticker}}</div>{{end}}
{{else if .IsVideo}}<video controls src="{{.Path}}"></video>
{{else if .IsAudio}}<audio controls src="{{.Path}}"></audio>
{{else}}<div class="bubble"><a href="{{.Path}}">{{.Name}}</a></div>
{{end}}{{end}}
{{define "preview"}}<div class="preview">{{if eq .Kind "url"}}{{if .URL}}<a href="{{.URL}}">{{if .Title}}{{.Title}}{{else}}{{.URL}}{{end}}</a>{{else}}link preview{{end}}
{{with .Summary}}<div>{{.}}</div>{{end}}{{with .SiteName}}<div class="site">{{.}}</div>{{end}}
{{else if eq .Kind "music"}}{{if .Title}}<div>{{.Title}}</div>{{end}}{{with .Artist}}<div class="site">{{.}}</div>{{end}}{{with .Album}}<div class="site">{{.}}</div>{{end}}{{with .URL}}<a href="{{.}}">listen</a>{{end}}
{{else}}<div class="site">app{{with .Bundle}}: {{.}}{{end}}</div>
{{end}}</div>{{end}}`
