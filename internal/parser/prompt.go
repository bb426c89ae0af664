package parser

import "google.golang.org/genai"

const dateRules = `and start and end dates must be formatted into 'MONTH YEAR', for example 'June 2025'. If only one
date is mentioned instead of both a start and an end, treat it as the end date and leave the start date empty`

const systemPrompt = `You are a data analyst tasked with parsing a resume into the columns of a database table.
You will be given the text content of a resume. Extract all of the data with the highest accuracy and
return a single JSON object.

WARNING: YOU MUST STRICTLY FOLLOW THE DATA STRUCTURE DESCRIBED BELOW.

The scalar fields are name, email, phone, linkedin, github and summary, where summary is the overview of
the candidate.

The composite fields are:

1. experiences: work experience. For each entry return title, summary (description of the work),
start_date and end_date ` + dateRules + `, and organization (the company where the experience was gained).
An experience may list projects of its own. Convert each such project into a line of the experience
summary and do not return nested projects. If the experience has no dates, derive them from the
dates of its projects.

2. projects: for each project return title, summary, start_date and end_date ` + dateRules + `,
technologies (tools and frameworks, never programming languages) and programming_languages (never
technologies or tools). If they are not listed separately, extract them from the summary when possible.

3. educations: for each entry return title (degree or qualification), organization (where it was
pursued), start_date and end_date ` + dateRules + `, grade (grade, CGPA or GPA, empty if not given) and
percentage (empty if not given and not computable).

4. technical_skills: every technical skill or tool mentioned, excluding programming languages.

5. programming_languages: every programming language mentioned, excluding technical skills.

6. soft_skills: every soft skill mentioned.

7. languages: every spoken language mentioned.

8. certifications: for each certification return title, organization (the issuer) and end_date (when it
was completed or issued) formatted as 'MONTH YEAR', for example 'June 2025'.

9. total_experience: total years of work experience as a floating point number, computed from the start
and end dates of all work experiences excluding internships.`

const userPromptPrefix = "Resume Content - \n\n"

func stringArray() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
}

func str() *genai.Schema {
	return &genai.Schema{Type: genai.TypeString}
}

func object(props map[string]*genai.Schema, required ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}

// ResumeSchema is the response schema handed to the model.
func ResumeSchema() *genai.Schema {
	experience := object(map[string]*genai.Schema{
		"title":        str(),
		"summary":      str(),
		"start_date":   str(),
		"end_date":     str(),
		"organization": str(),
	}, "title")

	education := object(map[string]*genai.Schema{
		"title":        str(),
		"start_date":   str(),
		"end_date":     str(),
		"organization": str(),
		"grade":        str(),
		"percentage":   str(),
	}, "title")

	project := object(map[string]*genai.Schema{
		"title":                 str(),
		"summary":               str(),
		"start_date":            str(),
		"end_date":              str(),
		"technologies":          stringArray(),
		"programming_languages": stringArray(),
	}, "title")

	certification := object(map[string]*genai.Schema{
		"title":        str(),
		"organization": str(),
		"end_date":     str(),
	}, "title")

	return object(map[string]*genai.Schema{
		"name":                  str(),
		"email":                 str(),
		"phone":                 str(),
		"linkedin":              str(),
		"github":                str(),
		"summary":               str(),
		"total_experience":      {Type: genai.TypeNumber},
		"technical_skills":      stringArray(),
		"soft_skills":           stringArray(),
		"programming_languages": stringArray(),
		"languages":             stringArray(),
		"experiences":           {Type: genai.TypeArray, Items: experience},
		"educations":            {Type: genai.TypeArray, Items: education},
		"projects":              {Type: genai.TypeArray, Items: project},
		"certifications":        {Type: genai.TypeArray, Items: certification},
	}, "name")
}
