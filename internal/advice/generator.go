package advice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ashureev/careerdesk/internal/apperr"
	"github.com/ashureev/careerdesk/internal/domain"
	"go.uber.org/zap"
)

// Task selects the prompt template and the expected output.
type Task string

// Tasks.
const (
	TaskAdvice           Task = "advice"
	TaskLinkedInOptimize Task = "linkedin_optimize"
)

// ParseTask maps user input to a Task. Empty input selects TaskAdvice.
func ParseTask(s string) (Task, error) {
	switch Task(strings.TrimSpace(s)) {
	case "", TaskAdvice:
		return TaskAdvice, nil
	case TaskLinkedInOptimize:
		return TaskLinkedInOptimize, nil
	default:
		return "", apperr.Validation("task must be advice or linkedin_optimize").With("task", s)
	}
}

// UnavailableMessage is the message reported when no advice could be produced.
const UnavailableMessage = "advice unavailable"

const systemInstruction = "Sen bir 'Kişisel Kariyer Asistanı' yapay zekasısın."

// Input is everything one generation reads.
type Input struct {
	Snapshot        domain.Snapshot
	NotionConnected bool
	Task            Task
}

// Result is the validated model output. Advice is nil when the model only
// answered with tool calls.
type Result struct {
	Advice    *domain.Advice   `json:"advice,omitempty"`
	ToolCalls []ToolInvocation `json:"tool_calls"`
	Provider  string           `json:"provider"`
	Model     string           `json:"model"`
}

// Generator builds prompts and validates responses.
type Generator struct {
	model  Model
	logger *zap.Logger
}

// NewGenerator creates a Generator. With a nil model every call fails
// with a configuration error.
func NewGenerator(model Model, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{model: model, logger: logger}
}

// Available reports whether a model is configured.
func (g *Generator) Available() bool {
	return g.model != nil
}

// Generate calls the model. Call failures are ExternalServiceErrors and
// malformed payloads are ParseErrors; both mean advice is unavailable.
func (g *Generator) Generate(ctx context.Context, in Input) (*Result, error) {
	if g.model == nil {
		return nil, apperr.Configuration("no AI model is configured")
	}
	if in.Task == "" {
		in.Task = TaskAdvice
	}

	req := Request{
		System:         systemInstruction,
		Prompt:         BuildPrompt(in),
		Tools:          Tools(),
		ResponseSchema: adviceSchema,
	}

	resp, err := g.model.Generate(ctx, req)
	if err != nil {
		g.logger.Error("Advice generation failed",
			zap.String("task", string(in.Task)),
			zap.Error(err),
		)
		return nil, apperr.External(UnavailableMessage, err).With("task", string(in.Task))
	}

	result := &Result{
		ToolCalls: resp.ToolCalls,
		Provider:  resp.Provider,
		Model:     resp.Model,
	}
	if result.ToolCalls == nil {
		result.ToolCalls = []ToolInvocation{}
	}

	text := stripCodeFence(resp.Text)
	switch {
	case text != "":
		advice, err := ParseAdvice([]byte(text))
		if err != nil {
			g.logger.Warn("Model returned invalid advice",
				zap.String("provider", resp.Provider),
				zap.String("response_preview", preview(text, 200)),
				zap.Error(err),
			)
			return nil, err
		}
		result.Advice = advice
	case len(result.ToolCalls) == 0:
		return nil, apperr.Parse("model returned neither advice nor tool calls", nil)
	}

	g.logger.Info("Advice generated",
		zap.String("task", string(in.Task)),
		zap.String("provider", resp.Provider),
		zap.Int("tool_calls", len(result.ToolCalls)),
	)
	return result, nil
}

// BuildPrompt renders the user prompt for in.Task.
func BuildPrompt(in Input) string {
	p := in.Snapshot.Profile

	skills := make([]string, 0, len(in.Snapshot.Skills))
	for _, s := range in.Snapshot.Skills {
		skills = append(skills, fmt.Sprintf("%s (Seviye: %d/5)", s.Name, s.Level))
	}
	edu := make([]string, 0, len(in.Snapshot.Education))
	for _, e := range in.Snapshot.Education {
		edu = append(edu, e.Degree+" - "+e.Institution)
	}
	goals := make([]string, 0, len(in.Snapshot.Goals))
	for _, g := range in.Snapshot.Goals {
		goals = append(goals, fmt.Sprintf("%s (%s)", g.Title, g.Status))
	}

	var b strings.Builder
	if in.Task == TaskLinkedInOptimize {
		b.WriteString("Kullanıcının verilerine dayanarak LinkedIn profilini optimize et.\n\n")
		fmt.Fprintf(&b, "Profil: %s, %s -> %s\n", p.FullName, p.CurrentRole, p.TargetRole)
		fmt.Fprintf(&b, "Biyografi: %s\n", p.Bio)
		fmt.Fprintf(&b, "Yetenekler: %s\n", strings.Join(skills, ", "))
		fmt.Fprintf(&b, "Eğitim: %s\n\n", strings.Join(edu, ", "))
		fmt.Fprintf(&b, "Lütfen %q aracını kullanarak profesyonel bir LinkedIn optimizasyonu sağla.\n", ToolOptimizeLinkedIn)
		return b.String()
	}

	notion := "Bağlı Değil"
	if in.NotionConnected {
		notion = "Bağlı"
	}

	b.WriteString("Aşağıdaki kullanıcı verilerine dayanarak kişiselleştirilmiş kariyer önerileri sağla.\n\n")
	b.WriteString("Kullanıcı Profili:\n")
	fmt.Fprintf(&b, "- Mevcut Rol: %s\n", p.CurrentRole)
	fmt.Fprintf(&b, "- Hedef Rol: %s\n", p.TargetRole)
	fmt.Fprintf(&b, "- Biyografi: %s\n\n", p.Bio)
	fmt.Fprintf(&b, "Yetenekler: %s\n", strings.Join(skills, ", "))
	fmt.Fprintf(&b, "Eğitim: %s\n", strings.Join(edu, ", "))
	fmt.Fprintf(&b, "Hedefler: %s\n\n", strings.Join(goals, ", "))
	fmt.Fprintf(&b, "Notion Bağlantı Durumu: %s\n\n", notion)
	b.WriteString("Görevlerin:\n")
	b.WriteString("1. Kullanıcıya detaylı bir kariyer analizi sun (JSON formatında).\n")
	fmt.Fprintf(&b, "2. EĞER Notion bağlıysa, %q aracını kullanarak kullanıcı için Notion'da profesyonel bir kariyer yol haritası sayfası oluştur.\n\n", ToolCreateNotionPage)
	fmt.Fprintf(&b, "Yanıtı şu bölümlere ayır:\n- %s.\n", strings.Join(adviceFields, ", "))
	return b.String()
}

// ParseAdvice validates payload against the advice schema: every field
// present, non-null and of the right type.
func ParseAdvice(payload []byte) (*domain.Advice, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, apperr.Parse("advice is not a JSON object", err)
	}
	for _, name := range adviceFields {
		raw, ok := fields[name]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return nil, apperr.Parse("advice is missing a required field", nil).With("field", name)
		}
	}

	var advice domain.Advice
	if err := json.Unmarshal(payload, &advice); err != nil {
		return nil, apperr.Parse("advice has a field of the wrong type", err)
	}
	return &advice, nil
}

// stripCodeFence removes a surrounding markdown code fence.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```json"))
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```"))
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
