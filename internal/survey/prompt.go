package survey

import (
	"fmt"

	"github.com/nbenliogludev/go-survey-agent/internal/profile"
)

const DefaultState = "Nordrhein-Westfalen"

const personaTemplate = `You are answering a survey. You will be given the html code of the question.
You have to answer the question as if you are a %[1]s year old %[2]s born in %[3]s with ethnicity %[4]s who lives in %[5]s, %[6]s.
%[7]s and your work status is: %[8]s. So:
- Age: %[1]s
- Gender: %[2]s
- Country of origin: %[3]s
- German state: %[6]s
- Ethnicity: %[4]s
- Country: %[5]s
- Student: %[7]s
- Work status: %[8]s
Only return your answer and nothing else.
IF it is a multiple choice question, only return the number of the answer you choose, like '1', '2', '3' or '4', etc.
IF it is a text question, return the text you would write as a response.
ONLY return the answer.
ONLY return the answer on the html question provided.
DO NOT answer any other questions that are in the screenshot, ONLY the html question provided.`

const questionSuffix = " \n\n Answer this question as if you were the respondent. Only return your answer."

// SystemPrompt builds the persona the model answers as.
func SystemPrompt(p profile.Profile, state string) string {
	if state == "" {
		state = DefaultState
	}
	return fmt.Sprintf(personaTemplate,
		p.Age,
		p.Sex,
		p.CountryOfBirth,
		p.Ethnicity,
		p.CountryOfResidence,
		state,
		p.StudentText(),
		p.EmploymentStatus,
	)
}

func QuestionText(html string) string {
	return html + questionSuffix
}
