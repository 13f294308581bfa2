package generator

import (
	"fmt"
	"strings"
)

// The prompts are written in French: the product targets French students
// looking for an alternance, and the generated documents must read natively.

// CVEducation is one education line in a CV request.
type CVEducation struct {
	Degree string `json:"degree"`
	School string `json:"school"`
	Year   string `json:"year"`
}

// CVExperience is one experience line in a CV request.
type CVExperience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

// CVInput is the payload for a CV generation.
type CVInput struct {
	FirstName  string         `json:"firstName"`
	LastName   string         `json:"lastName"`
	Email      string         `json:"email"`
	Phone      string         `json:"phone"`
	Education  []CVEducation  `json:"education"`
	Experience []CVExperience `json:"experience"`
	Skills     []string       `json:"skills"`
	Languages  []string       `json:"languages"`
}

// CoverLetterInput is the payload for a cover letter generation.
type CoverLetterInput struct {
	FirstName  string   `json:"firstName"`
	LastName   string   `json:"lastName"`
	Company    string   `json:"company"`
	Position   string   `json:"position"`
	Motivation string   `json:"motivation"`
	Skills     []string `json:"skills"`
}

// CVPrompt renders the CV generation prompt.
func CVPrompt(in CVInput) string {
	var education strings.Builder
	for _, e := range in.Education {
		fmt.Fprintf(&education, "- %s à %s (%s)\n", e.Degree, e.School, e.Year)
	}

	var experience strings.Builder
	for _, e := range in.Experience {
		fmt.Fprintf(&experience, "- %s chez %s (%s): %s\n", e.Title, e.Company, e.Duration, e.Description)
	}

	return fmt.Sprintf(`Tu es un expert en rédaction de CV pour étudiants français cherchant une alternance.

Génère un CV professionnel et moderne en français pour:
- Nom: %s %s
- Email: %s
- Téléphone: %s

Formation:
%s
Expérience:
%s
Compétences: %s
Langues: %s

Format: Markdown professionnel avec sections claires. Sois concis et impactant. Mets en avant les compétences techniques et soft skills.`,
		in.FirstName, in.LastName,
		in.Email,
		in.Phone,
		education.String(),
		experience.String(),
		strings.Join(in.Skills, ", "),
		strings.Join(in.Languages, ", "),
	)
}

// CoverLetterPrompt renders the cover letter generation prompt.
func CoverLetterPrompt(in CoverLetterInput) string {
	return fmt.Sprintf(`Tu es un expert en rédaction de lettres de motivation pour étudiants français cherchant une alternance.

Génère une lettre de motivation professionnelle et personnalisée en français pour:
- Candidat: %s %s
- Entreprise: %s
- Poste: %s
- Motivation: %s
- Compétences clés: %s

Format: Lettre formelle française avec:
1. En-tête (coordonnées + entreprise)
2. Objet
3. Introduction accrocheuse
4. Paragraphe sur les compétences
5. Paragraphe sur la motivation
6. Conclusion et disponibilité
7. Formule de politesse

Sois authentique, enthousiaste et professionnel. Maximum 300 mots.`,
		in.FirstName, in.LastName,
		in.Company,
		in.Position,
		in.Motivation,
		strings.Join(in.Skills, ", "),
	)
}
