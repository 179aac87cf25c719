package extractor

import (
	"html"
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rp-haven/oc-registrar/src/bot/types"
)

var embedTitle = regexp.MustCompile(`(?i)^oc:\s*(.*)$`)

// Prefixes recognized at the start of plain-text submissions.
var textPrefixes = []string{"oc:", "name:"}

// Extractor pulls the candidate character name out of a submission. Embed
// titles win over plain text; relayed form posts sometimes smuggle HTML
// fragments, which are stripped.
type Extractor struct {
	sanitizer *bluemonday.Policy
}

func New() *Extractor {
	return &Extractor{sanitizer: bluemonday.StrictPolicy()}
}

// CandidateName returns the submitted name, or "" when the message does not
// look like a submission.
func (e *Extractor) CandidateName(sub types.Submission) string {
	if name, ok := e.fromEmbeds(sub.Embeds); ok {
		// An OC-titled embed is authoritative even when its name is blank.
		return name
	}
	return e.fromContent(sub.Content)
}

func (e *Extractor) fromEmbeds(embeds []*discordgo.MessageEmbed) (string, bool) {
	for _, em := range embeds {
		if em == nil || em.Title == "" {
			continue
		}
		if m := embedTitle.FindStringSubmatch(em.Title); m != nil {
			return e.clean(m[1]), true
		}
	}
	return "", false
}

func (e *Extractor) fromContent(content string) string {
	text := strings.TrimSpace(content)
	lower := strings.ToLower(text)
	for _, prefix := range textPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return e.clean(text[len(prefix):])
		}
	}
	return e.clean(text)
}

func (e *Extractor) clean(raw string) string {
	return strings.TrimSpace(html.UnescapeString(e.sanitizer.Sanitize(raw)))
}
