package advice

import "google.golang.org/genai"

// Tool names advertised to the model.
const (
	ToolCreateNotionPage = "createNotionPage"
	ToolOptimizeLinkedIn = "optimizeLinkedInProfile"
)

func stringSchema(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

func stringListSchema(desc string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeArray,
		Items:       &genai.Schema{Type: genai.TypeString},
		Description: desc,
	}
}

var createNotionPageTool = &genai.FunctionDeclaration{
	Name:        ToolCreateNotionPage,
	Description: "Notion'da yeni bir kariyer planı sayfası oluşturur. Sadece kullanıcı Notion'ı bağladıysa kullanın.",
	Parameters: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":       stringSchema("Notion sayfasının başlığı"),
			"planContent": stringSchema("Notion sayfasına eklenecek detaylı kariyer planı içeriği."),
		},
		Required: []string{"title", "planContent"},
	},
}

var optimizeLinkedInTool = &genai.FunctionDeclaration{
	Name:        ToolOptimizeLinkedIn,
	Description: "Kullanıcının verilerine dayanarak LinkedIn profilini optimize eder.",
	Parameters: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"headline":          stringSchema("Önerilen LinkedIn başlığı"),
			"about":             stringSchema("Önerilen LinkedIn 'Hakkında' yazısı"),
			"experienceTips":    stringListSchema("Deneyimler kısmını iyileştirmek için ipuçları"),
			"skillsToHighlight": stringListSchema("Öne çıkarılması gereken anahtar kelimeler/yetenekler"),
		},
		Required: []string{"headline", "about", "experienceTips", "skillsToHighlight"},
	},
}

// adviceFields are the required keys of an advice payload.
var adviceFields = []string{"analysis", "shortTerm", "mediumTerm", "longTerm", "motivation", "fullMarkdown"}

var adviceSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"analysis":     {Type: genai.TypeString},
		"shortTerm":    stringListSchema(""),
		"mediumTerm":   stringListSchema(""),
		"longTerm":     stringListSchema(""),
		"motivation":   {Type: genai.TypeString},
		"fullMarkdown": {Type: genai.TypeString},
	},
	Required: adviceFields,
}

// Tools returns the function declarations sent with every request.
func Tools() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{createNotionPageTool, optimizeLinkedInTool}
}
