package aiquiz

import "fmt"

const optionsPromptTemplate = `Generate 4 plausible multiple-choice options for the following quiz question.
Make sure one option is clearly correct and three are plausible but incorrect.
The order of options should be random.

Format your response as exactly 4 lines:
Option 1: [First option]
Option 2: [Second option]
Option 3: [Third option]
Option 4: [Fourth option]

Then on a new line, indicate the correct option number (1-4):
Correct: [number]

Question: %q
`

const fullQuizPromptTemplate = `Generate %d multiple-choice quiz questions as a valid JSON array.
Each string must escape internal double quotes using \".
Do not include any text outside the JSON.
Topic: %q
Course Context: %q
Difficulty Level: %s

Each JSON object should have:
{
  "text": "string",
  "options": ["string", "string", "string", "string"],
  "correct_option": 0
}

Rules:
- Return ONLY valid JSON, no extra text or markdown.
- Each question must have exactly 4 options.
- "correct_option" must be the index (0-3) of the correct answer.
- Questions must match %s difficulty and cover different aspects of the topic.
`

const explanationPromptTemplate = `Explain in about 50 words why the answer %q to the question %q is wrong.`

func BuildOptionsPrompt(questionText string) string {
	return fmt.Sprintf(optionsPromptTemplate, questionText)
}

func BuildFullQuizPrompt(req QuestionRequest) string {
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = "medium"
	}
	return fmt.Sprintf(fullQuizPromptTemplate, req.Count, req.Topic, req.CourseContext, difficulty, difficulty)
}

func BuildExplanationPrompt(questionText, optionText string) string {
	return fmt.Sprintf(explanationPromptTemplate, optionText, questionText)
}
