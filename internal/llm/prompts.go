package llm

const summarySystemPrompt = `You are a helpful assistant that summarizes the answer given to a survey question.
You will be given the html code of the question and the answer given by the respondent.
You have to summarize the answer.`

const summaryUserTemplate = "%s \n\n I answered this question with the following answer: %s"
