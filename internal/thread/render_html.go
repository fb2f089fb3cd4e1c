package thread

import (
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	replyItemTemplate = template.Must(template.New("reply").Parse(
		`<div class="reply-item{{if .Indent}} reply-indent-{{.Indent}}{{end}}" data-reply-id="{{.ID}}">` +
			`<div class="reply-header"><span class="reply-author">{{.Author}}</span>` +
			`{{if .Authenticated}}<button class="reply-to-reply-btn" id="reply-toggle-{{.ID}}" data-parent-id="{{.ID}}"><i class="fas fa-reply"></i></button>{{end}}` +
			`</div>` +
			`<div class="reply-text">{{.Text}}</div>` +
			`{{if .Authenticated}}<div class="reply-form-container" id="reply-form-{{.ID}}" style="display: none;">` +
			`<div class="reply-form compact nested">` +
			`<textarea id="reply-text-{{.ID}}" placeholder="Reply to {{.Author}}..." rows="2"></textarea>` +
			`<div class="reply-actions">` +
			`<button class="btn btn-xs btn-secondary cancel-reply-btn" id="reply-cancel-{{.ID}}" data-reply-id="{{.ID}}">Cancel</button>` +
			`<button class="btn btn-xs btn-primary reply-submit-btn" id="reply-submit-{{.ID}}" data-parent-id="{{.ID}}" data-target-id="reply-text-{{.ID}}">Reply</button>` +
			`</div></div></div>{{end}}` +
			`</div>`))

	rootFormTemplate = template.Must(template.New("root-form").Parse(
		`<div class="reply-form-section"><div class="reply-form compact">` +
			`<textarea id="reply-text-{{.}}" placeholder="Write a reply..." rows="2"></textarea>` +
			`<button class="btn btn-sm btn-primary reply-submit-btn" id="reply-submit-{{.}}" data-parent-id="{{.}}" data-target-id="reply-text-{{.}}">` +
			`<i class="fas fa-paper-plane"></i> Reply</button>` +
			`</div></div>`))
)

// HTMLRenderer produces the markup of the web client. Note bodies pass
// through the UGC policy; everything else is escaped by html/template.
type HTMLRenderer struct {
	policy *bluemonday.Policy
}

func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{policy: bluemonday.UGCPolicy()}
}

type htmlEntry struct {
	ID            int
	Indent        int
	Author        string
	Text          template.HTML
	Authenticated bool
}

func (r *HTMLRenderer) Render(forest []*Node, opts Options) Rendered {
	entries, out := layout(forest, opts)
	var b strings.Builder
	for _, e := range entries {
		data := htmlEntry{
			ID:            e.ID,
			Indent:        e.Indent,
			Author:        e.Author,
			Text:          template.HTML(r.sanitize(e.Text)),
			Authenticated: opts.Authenticated,
		}
		if err := replyItemTemplate.Execute(&b, data); err != nil {
			template.HTMLEscape(&b, []byte(e.Text))
		}
	}
	if opts.Authenticated && opts.RootID > 0 {
		_ = rootFormTemplate.Execute(&b, opts.RootID)
	}
	out.Markup = b.String()
	return out
}

func (r *HTMLRenderer) sanitize(text string) string {
	if r == nil || r.policy == nil {
		return template.HTMLEscapeString(text)
	}
	return r.policy.Sanitize(text)
}
