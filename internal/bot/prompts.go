package bot

import "fmt"

// GreetingPrompt просит модель начать разговор на заданном уровне CEFR
func GreetingPrompt(level string) string {
	return fmt.Sprintf("Write a friendly greeting and ask the user a simple question about their daily routine in English, according to CEFR level %s.", level)
}

// AnswerPrompt оборачивает сообщение пользователя
func AnswerPrompt(text string) string {
	return "Answer the user's message in English: " + text
}
