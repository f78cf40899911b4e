package tutor

import (
	"fmt"
	"strings"
)

func chatSystemPrompt(subject Subject) string {
	return fmt.Sprintf("You are a helpful and engaging AI tutor for the AI School Platform. "+
		"Your current subject is %s. Be encouraging and provide clear, concise explanations "+
		"suitable for a student. Do not greet the user unless it's the first message.", subject)
}

const recommendationSystemPrompt = `You are a learning coach on the AI School Platform. You suggest the single most useful next step for a student.`

func buildRecommendationMessage(subject Subject, level int, completed []string) string {
	var b strings.Builder

	b.WriteString("Based on the following student profile, generate one concise, actionable learning recommendation.\n")
	fmt.Fprintf(&b, "- Subject: %s\n", subject)
	fmt.Fprintf(&b, "- Current Level: %d\n", level)
	done := "None"
	if len(completed) > 0 {
		done = strings.Join(completed, ", ")
	}
	fmt.Fprintf(&b, "- Completed Assignments: %s\n", done)

	b.WriteString("\nThe recommendation should be a short, encouraging sentence suggesting what to learn ")
	b.WriteString("or practice next. For example: 'Try tackling the \"Introduction to Python\" assignment next!' ")
	b.WriteString("or 'Review the concepts of fractions to solidify your understanding.'")

	return b.String()
}

const feedbackSystemPrompt = `You are a supportive quiz coach for students. You reply with exactly one sentence.`

func buildFeedbackMessage(question, answer, correct string) string {
	verdict := "incorrect"
	if answer == correct {
		verdict = "correct"
	}

	var b strings.Builder
	b.WriteString("A student answered a quiz question.\n")
	fmt.Fprintf(&b, "- Question: %q\n", question)
	fmt.Fprintf(&b, "- Their Answer: %q\n", answer)
	fmt.Fprintf(&b, "- Correct Answer: %q\n", correct)
	fmt.Fprintf(&b, "\nThe student's answer was %s.\n", verdict)
	b.WriteString("Provide a brief, one-sentence feedback. If correct, be encouraging. If incorrect, ")
	b.WriteString("briefly explain why the correct answer is right without being discouraging.")
	return b.String()
}
