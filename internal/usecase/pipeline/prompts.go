package pipeline

import (
	"fmt"
	"strings"

	"github.com/johnquangdev/talk-assistant/pkg/ai"
)

// Structured outputs requested from the chat model. `jsonschema` tags drive
// the function parameter schema; `validate` tags reject out-of-range values.

type summaryOutput struct {
	Summary string `json:"summary" jsonschema:"required" jsonschema_description:"The summary in Markdown." validate:"required"`
}

type illustrationPromptOutput struct {
	Prompt    string `json:"prompt" jsonschema:"required" jsonschema_description:"The prompt for the artist." validate:"required"`
	Name      string `json:"name" jsonschema:"required" jsonschema_description:"A one to three word poetic name for the art." validate:"required"`
	Reasoning string `json:"reasoning,omitempty" jsonschema_description:"The reasoning for the prompt."`
}

type termCandidate struct {
	Term         string `json:"term" jsonschema:"required" validate:"required"`
	NewnessPct   int    `json:"newnessPct" jsonschema:"required" jsonschema_description:"The probability % (0 to 100) that the term is not known by the given audience." validate:"gte=0,lte=100"`
	ValuePct     int    `json:"valuePct" jsonschema:"required" jsonschema_description:"The probability % (0 to 100) that the term is worth knowing by the audience." validate:"gte=0,lte=100"`
	DefinablePct int    `json:"definablePct" jsonschema:"required" jsonschema_description:"The probability % (0 to 100) that you are able to define the word accurately." validate:"gte=0,lte=100"`
}

type extractTermsOutput struct {
	Terms []termCandidate `json:"terms" jsonschema:"required" validate:"dive"`
}

type defineTermOutput struct {
	Definition string `json:"definition" jsonschema:"required" validate:"required"`
}

type pullQuoteCandidate struct {
	Text  string `json:"text" jsonschema:"required" jsonschema_description:"The text of the pull quote. It must be no more than 1 sentence long." validate:"required"`
	Score int    `json:"score" jsonschema:"required" jsonschema_description:"The score of the pull quote. 0 is not interesting. 100 is extremely interesting." validate:"gte=0,lte=100"`
}

type pullQuotesOutput struct {
	Quotes []pullQuoteCandidate `json:"quotes" jsonschema:"required" validate:"dive"`
}

type sentimentOutput struct {
	Polarity     float64 `json:"polarity" jsonschema:"required" jsonschema_description:"A number between -1 and 1 that indicates how positive or negative the speech is." validate:"gte=-1,lte=1"`
	Subjectivity float64 `json:"subjectivity" jsonschema:"required" jsonschema_description:"A number between 0 and 1 that indicates how subjective or objective the speech is." validate:"gte=0,lte=1"`
}

type questionLabelOutput struct {
	Name string `json:"name" jsonschema:"required" jsonschema_description:"A two to five word label that distinguishes the question." validate:"required"`
}

var (
	chapterSummaryFn   = ai.NewFunction[summaryOutput]("summary", "Create a bullet point summary.")
	recordingSummaryFn = ai.NewFunction[summaryOutput]("summary", `Summarize the transcript in Axios-like "Smart Brevity" style.`)
	illustrationFn     = ai.NewFunction[illustrationPromptOutput]("prompt", "Create a prompt for the artist.")
	extractTermsFn     = ai.NewFunction[extractTermsOutput]("extractTerms", "Extracts key unknown vocabulary terms from a transcript that are probably not understood by the given audience. Do not include terms that are probably understood by the given audience. The term should only be capitalized if it is a proper noun. Do not include any punctuation.")
	defineTermFn       = ai.NewFunction[defineTermOutput]("defineTerm", "Defines a vocabulary term for a given audience.")
	pullQuotesFn       = ai.NewFunction[pullQuotesOutput]("pullQuotes", "A list of pull quotes.")
	sentimentFn        = ai.NewFunction[sentimentOutput]("sentiment", "Estimate the sentiment of a section of a speech.")
	questionLabelFn    = ai.NewFunction[questionLabelOutput]("name", "Name a question asked by an attendee.")
)

func system(content string) ai.Message {
	return ai.Message{Role: ai.RoleSystem, Content: strings.TrimSpace(content)}
}

func user(content string) ai.Message {
	return ai.Message{Role: ai.RoleUser, Content: strings.TrimSpace(content)}
}

// transcriptionPrompt carries the previous chunk's transcript as a continuation hint
func transcriptionPrompt(previous string) string {
	if previous == "" {
		return ""
	}
	return fmt.Sprintf(`The transcript of the previous audio chunk was: "%s"`, previous)
}

func chapterSummaryMessages(audience, transcript string) []ai.Message {
	return []ai.Message{
		system(fmt.Sprintf(`You are an assistant that is creating a bullet point summary for the following audience:

%s

The summary just needs to be a few bullet points that summarize the main points of the transcript.`, audience)),
		user("Here's the full content:\n" + transcript),
	}
}

func recordingSummaryMessages(audience, chaptersSummary string) []ai.Message {
	return []ai.Message{
		system(fmt.Sprintf(`You are an assistant that is creating a Axios-like "Smart Brevity"-style summary for the following audience:

%s`, audience)),
		user("Here's the full content:\n" + chaptersSummary),
	}
}

func illustrationMessages(style, transcript string) []ai.Message {
	return []ai.Message{
		system(fmt.Sprintf(`You are an art director.
You are creating a short 10 word prompt for an image based on following content provided by the user.
The prompt should be a short description of a naturalist image that you want the artist to create inspired by this content.
The prompt should not describe people.
The prompt should be written in a way that is easy for the artist to understand and follow.
The image should be a scene in the real world.
The illustration should include no words.
The style should be %s and the prompt must include the style.`, style)),
		user(fmt.Sprintf(`The content is as follows:
"""
%s
"""

Please create a prompt for the artist and explain your reasoning as an art director.`, transcript)),
	}
}

func extractTermsMessages(audience, transcript string) []ai.Message {
	return []ai.Message{
		system(fmt.Sprintf(`You are an assistant that is extracting key unknown vocabulary terms from a transcript for the following audience:

%s

It is fine if you don't extract any terms if you think the transcript is understandable by the given audience. Only extract terms that you know the meaning of confidently.`, audience)),
		user(transcript),
	}
}

func defineTermMessages(audience, term string) []ai.Message {
	return []ai.Message{
		system(fmt.Sprintf(`You are an assistant that is defining vocabulary terms for the following audience:

%s

The definitions should be no longer than 2 sentences, and they should be written in a way that is understandable by the audience.`, audience)),
		user(term),
	}
}

func pullQuoteMessages(audience, transcript string) []ai.Message {
	return []ai.Message{
		system(fmt.Sprintf(`You are a marketing assistant that is creating a pull quote for the following audience:

"""
%s
"""

The pull quote must come from the provided content and be no more than 1 sentence long.
Edit pull quotes to fix grammatical issues, remove filler words, and maximize the impact.
You will score all pull quotes on a scale of 0 - 100 where 0 is not interesting and 100 is very interesting.
Only really interesting pull quotes should be given a score of greater than 70.`, audience)),
		user(fmt.Sprintf(`Here's the full content from which you can pull quotes:

"""
%s
"""`, transcript)),
	}
}

func sentimentMessages(audience, summary string) []ai.Message {
	return []ai.Message{
		system(fmt.Sprintf(`You are an assistant that is estimating the sentiment of a section of a speech for the following audience:

"""
%s
"""

You are estimating the polarity and subjectivity of the speech. Polarity is a number between -1 and 1 that indicates how positive or negative the speech is. Subjectivity is a number between 0 and 1 that indicates how subjective or objective the speech is.`, audience)),
		user("Here's the section of the speech that you're estimating the sentiment of:\n\n" + summary),
	}
}

func questionMessages(name, audience, profile string, previous []string, summary string) []ai.Message {
	asked := make([]string, len(previous))
	for i, q := range previous {
		asked[i] = "- " + q
	}
	return []ai.Message{
		system(fmt.Sprintf(`You are an attendee at a conference. Your name is %s.

The audience of the event is:

%s

Here is your profile:

%s

Previously, you've asked the following questions:
%s

You are asking a question of the speaker. The question should be smart, brief, relevant to the speech, interesting to the audience, and make a lot of sense in the context of your profile (such as referencing your experience, responsibilities, or interests and in a voice that makes sense based on your profile). State your name and your role in the question.

You should not repeat a question that you've already asked.`, name, audience, profile, strings.Join(asked, "\n"))),
		user(fmt.Sprintf(`Here's a summary of the speech that you're asking a question about:

"""
%s
"""

Ask the best possible question that you can think of!`, summary)),
	}
}

func questionLabelMessages(question string) []ai.Message {
	return []ai.Message{
		system("You are an assistant that names questions asked at a conference. The name should be short and distinguish the question from others."),
		user(question),
	}
}
