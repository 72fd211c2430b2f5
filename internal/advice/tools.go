package advice

import (
	"encoding/json"
	"strings"

	"github.com/ashureev/careerdesk/internal/apperr"
	"github.com/ashureev/careerdesk/internal/domain"
)

// NotionPage is the argument set of the export tool.
type NotionPage struct {
	Title       string `json:"title"`
	PlanContent string `json:"planContent"`
}

// NotionPage decodes the export tool's arguments.
func (t ToolInvocation) NotionPage() (NotionPage, error) {
	var page NotionPage
	if err := t.decode(ToolCreateNotionPage, &page); err != nil {
		return NotionPage{}, err
	}
	if strings.TrimSpace(page.PlanContent) == "" {
		return NotionPage{}, apperr.Parse("createNotionPage call has no plan content", nil)
	}
	return page, nil
}

// LinkedInOptimization decodes the profile optimization tool's arguments.
func (t ToolInvocation) LinkedInOptimization() (*domain.LinkedInOptimization, error) {
	var opt domain.LinkedInOptimization
	if err := t.decode(ToolOptimizeLinkedIn, &opt); err != nil {
		return nil, err
	}
	if strings.TrimSpace(opt.Headline) == "" {
		return nil, apperr.Parse("optimizeLinkedInProfile call has no headline", nil)
	}
	if opt.ExperienceTips == nil {
		opt.ExperienceTips = []string{}
	}
	if opt.SkillsToHighlight == nil {
		opt.SkillsToHighlight = []string{}
	}
	return &opt, nil
}

func (t ToolInvocation) decode(tool string, dst any) error {
	if t.Name != tool {
		return apperr.Parse("unexpected tool call", nil).With("tool", t.Name)
	}
	data, err := json.Marshal(t.Args)
	if err != nil {
		return apperr.Parse("tool arguments are not encodable", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return apperr.Parse("tool arguments have the wrong shape", err).With("tool", tool)
	}
	return nil
}

// PlanFromPage is the plan exported when the model asks for a page
// instead of returning structured advice.
func PlanFromPage(page NotionPage) domain.Advice {
	return domain.Advice{
		Analysis:     "AI tarafından otomatik oluşturulan plan.",
		ShortTerm:    []string{page.PlanContent},
		MediumTerm:   []string{"Plan detayları Notion sayfanızda."},
		LongTerm:     []string{"Başarılar dileriz!"},
		Motivation:   "Yolun açık olsun!",
		FullMarkdown: page.PlanContent,
	}
}
