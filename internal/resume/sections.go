package resume

import "strings"

const (
	SectionExperience = "experience"
	SectionEducation  = "education"
	SectionSkills     = "skills"
	SectionProjects   = "projects"
)

// sectionKeywords is checked in order; the first keyword found in a line wins.
var sectionKeywords = []struct {
	keyword string
	section string
}{
	{"experience", SectionExperience},
	{"education", SectionEducation},
	{"skill", SectionSkills},
	{"project", SectionProjects},
}

// Sections splits resume text into its main sections. Lines are lower-cased.
// A line mentioning a section keyword starts that section and is not kept.
// Text before the first heading is dropped.
func Sections(text string) map[string]string {
	out := map[string]string{
		SectionExperience: "",
		SectionEducation:  "",
		SectionSkills:     "",
		SectionProjects:   "",
	}

	current := ""
	for _, line := range strings.Split(text, "\n") {
		line = strings.ToLower(strings.TrimSpace(line))

		if section := heading(line); section != "" {
			current = section
			continue
		}
		if current == "" {
			continue
		}

		out[current] += line + "\n"
	}

	return out
}

func heading(line string) string {
	for _, kw := range sectionKeywords {
		if strings.Contains(line, kw.keyword) {
			return kw.section
		}
	}
	return ""
}
