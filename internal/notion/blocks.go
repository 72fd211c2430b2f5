package notion

import (
	"unicode/utf8"

	"github.com/ashureev/careerdesk/internal/domain"
)

// Limits imposed by the Notion API.
const (
	MaxBlocks     = 100
	MaxTextLength = 2000
)

// Section headings of an exported plan.
const (
	headingAnalysis   = "Kariyer Analizi"
	headingShortTerm  = "🚀 Başlangıç (Kısa Vade)"
	headingMediumTerm = "📈 Orta Vade (3-12 Ay)"
	headingLongTerm   = "🎯 Uzun Vade (1-3 Yıl)"
)

// Block is a Notion block object. Exactly one content field is set.
type Block struct {
	Object           string         `json:"object"`
	Type             string         `json:"type"`
	Heading1         *RichTextBlock `json:"heading_1,omitempty"`
	Heading2         *RichTextBlock `json:"heading_2,omitempty"`
	Paragraph        *RichTextBlock `json:"paragraph,omitempty"`
	BulletedListItem *RichTextBlock `json:"bulleted_list_item,omitempty"`
	Quote            *RichTextBlock `json:"quote,omitempty"`
	Divider          *struct{}      `json:"divider,omitempty"`
}

// RichTextBlock is the body of a text-bearing block.
type RichTextBlock struct {
	RichText []RichText `json:"rich_text"`
}

// RichText is a plain text run.
type RichText struct {
	Type string `json:"type"`
	Text Text   `json:"text"`
}

// Text holds run content.
type Text struct {
	Content string `json:"content"`
}

func richText(s string) *RichTextBlock {
	return &RichTextBlock{RichText: []RichText{{Type: "text", Text: Text{Content: clip(s)}}}}
}

func textBlock(kind, s string) Block {
	b := Block{Object: "block", Type: kind}
	switch kind {
	case "heading_1":
		b.Heading1 = richText(s)
	case "heading_2":
		b.Heading2 = richText(s)
	case "paragraph":
		b.Paragraph = richText(s)
	case "bulleted_list_item":
		b.BulletedListItem = richText(s)
	case "quote":
		b.Quote = richText(s)
	}
	return b
}

func dividerBlock() Block {
	return Block{Object: "block", Type: "divider", Divider: &struct{}{}}
}

// BuildBlocks renders advice as a page body, truncated to MaxBlocks.
func BuildBlocks(a domain.Advice) []Block {
	blocks := make([]Block, 0, 9+a.RecommendationCount())

	blocks = append(blocks,
		textBlock("heading_1", headingAnalysis),
		textBlock("paragraph", a.Analysis),
	)

	sections := []struct {
		heading string
		items   []string
	}{
		{headingShortTerm, a.ShortTerm},
		{headingMediumTerm, a.MediumTerm},
		{headingLongTerm, a.LongTerm},
	}
	for _, sec := range sections {
		blocks = append(blocks, textBlock("heading_2", sec.heading))
		for _, item := range sec.items {
			blocks = append(blocks, textBlock("bulleted_list_item", item))
		}
	}

	blocks = append(blocks, dividerBlock(), textBlock("quote", a.Motivation))

	if len(blocks) > MaxBlocks {
		blocks = blocks[:MaxBlocks]
	}
	return blocks
}

// clip shortens s to MaxTextLength runes.
func clip(s string) string {
	if utf8.RuneCountInString(s) <= MaxTextLength {
		return s
	}
	return string([]rune(s)[:MaxTextLength])
}
