package domain

// Advice is a structured career recommendation. It is never persisted.
type Advice struct {
	Analysis     string   `json:"analysis"`
	ShortTerm    []string `json:"shortTerm"`
	MediumTerm   []string `json:"mediumTerm"`
	LongTerm     []string `json:"longTerm"`
	Motivation   string   `json:"motivation"`
	FullMarkdown string   `json:"fullMarkdown"`
}

// RecommendationCount returns the number of list items across all horizons.
func (a *Advice) RecommendationCount() int {
	return len(a.ShortTerm) + len(a.MediumTerm) + len(a.LongTerm)
}

// LinkedInOptimization is a suggested professional-network profile rewrite.
type LinkedInOptimization struct {
	Headline          string   `json:"headline"`
	About             string   `json:"about"`
	ExperienceTips    []string `json:"experienceTips"`
	SkillsToHighlight []string `json:"skillsToHighlight"`
}

// Snapshot is everything the advice generator reads about the user.
type Snapshot struct {
	Profile   Profile     `json:"profile"`
	Skills    []Skill     `json:"skills"`
	Education []Education `json:"education"`
	Goals     []Goal      `json:"goals"`
}
