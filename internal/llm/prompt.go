package llm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Rrens/pain-mapper/internal/anatomy"
	"github.com/Rrens/pain-mapper/internal/domain"
)

// Empty-section markers. A missing section is always rendered with one of
// these so the model can tell "nothing yet" from "not provided".
const (
	emptyLandmarks  = "<empty>No landmarks available</empty>"
	emptyPainPoints = "<empty>No pain points marked yet</empty>"
	emptyHistory    = "<empty>No conversation yet</empty>"
	emptyNotes      = "<empty>No notes yet</empty>"
)

// SessionSystemMessage instructs the model for the reconciliation call
const SessionSystemMessage = `You are a medical intake assistant helping a patient map their pain on a 3D body model.

<task>
Read the session context and the new user message, then return the updated state of the session as JSON.
</task>

<critical_rules>
  <rule id="landmarks_only">
    You cannot see the body model. Refer to locations ONLY by the exact "name" of a landmark listed in available_landmarks.
    Never invent landmark names and never output coordinates.
  </rule>
  <rule id="full_replacement">
    When you return "painPoints" it REPLACES every current pain point. Include the points that should be kept, not only new ones.
  </rule>
  <rule id="omit_when_unchanged">
    If the message does not change the pain points, omit "painPoints" entirely.
  </rule>
  <rule id="empty_means_clear">
    Return "painPoints": [] only when no pain point should remain (for example the patient retracts everything they said).
  </rule>
  <rule id="rating">
    "rating" is an integer from 0 to 10. Keep the patient's own number when they give one.
  </rule>
  <rule id="notes">
    "notes" is a concise clinical summary of the whole session so far. Update it when the message adds information, omit it otherwise.
  </rule>
</critical_rules>

<output_format>
{
  "painPoints": [
    {"landmark": "lower_back", "label": "Dull ache after lifting", "type": "dull", "notes": "Worse in the morning", "rating": 6}
  ],
  "notes": "Session summary"
}
</output_format>`

// SuggestionsSystemMessage instructs the model for the suggestion call
const SuggestionsSystemMessage = `You are a medical assistant helping gather complete information about a patient's pain condition.

<task>
Based on the current session state (pain points, conversation history, notes), generate 0-4 relevant questions that would help understand the patient's condition better.
</task>

<question_focus_areas>
- Timing: onset, progression, time-of-day patterns
- Triggers: what makes it worse or better, movements, positions
- Characteristics: quality changes, radiation, associated symptoms
- Treatments: medication, therapy, home remedies and their effect
- Functional impact: activities, sleep, work
- Medical history: previous episodes, injuries, diagnoses
</question_focus_areas>

<critical_rules>
  <rule id="avoid_redundancy">Never ask about information already present in the conversation history or notes.</rule>
  <rule id="contextual_relevance">Questions must be specific to the current pain points.</rule>
  <rule id="zero_is_valid">If the session is already comprehensive, return an empty list.</rule>
  <rule id="concise_titles">Title at most 8 words. Description at most 2 sentences.</rule>
</critical_rules>

<output_format>
{"suggestions": [{"title": "Short question", "description": "Full question with context"}]}
</output_format>`

// BuildSessionPrompt renders the reconciliation prompt. history must be
// ordered by index.
func BuildSessionPrompt(catalog *anatomy.Catalog, history []domain.HistorySlot, painPoints []domain.PainPoint, userMessage string) string {
	var b strings.Builder

	b.WriteString("<session_context>\n")
	section(&b, "available_landmarks", formatLandmarks(catalog))
	section(&b, "current_pain_points", formatPainPoints(painPoints, catalog))
	section(&b, "conversation_history", formatHistory(history))
	section(&b, "current_notes", formatCurrentNotes(history))
	b.WriteString("</session_context>\n\n")

	fmt.Fprintf(&b, "<user_message>\n%s\n</user_message>\n\n", userMessage)

	b.WriteString(`<instructions>
1. Decide whether the message changes the pain points; omit "painPoints" if it does not
2. When it does, return the complete list using landmark names from available_landmarks
3. Update "notes" when the message adds clinical information
4. Return valid JSON matching the schema
</instructions>`)

	return b.String()
}

// BuildSuggestionsPrompt renders the suggestion prompt. history must be
// ordered by index.
func BuildSuggestionsPrompt(painPoints []domain.PainPoint, history []domain.HistorySlot) string {
	var b strings.Builder

	b.WriteString("<session_context>\n")
	section(&b, "pain_points", formatPainPoints(painPoints, nil))
	section(&b, "conversation_history", formatHistory(history))
	section(&b, "current_notes", formatCurrentNotes(history))
	b.WriteString("</session_context>\n\n")

	b.WriteString(`<instructions>
1. Review all information already provided above
2. Identify gaps that would help complete the medical picture
3. Generate 0-4 questions focusing on missing information
4. Return valid JSON matching the schema
</instructions>`)

	return b.String()
}

func section(b *strings.Builder, tag, body string) {
	fmt.Fprintf(b, "  <%s>\n%s\n  </%s>\n", tag, body, tag)
}

func formatLandmarks(catalog *anatomy.Catalog) string {
	landmarks := catalog.Landmarks()
	if len(landmarks) == 0 {
		return "    " + emptyLandmarks
	}

	lines := make([]string, len(landmarks))
	for i, l := range landmarks {
		lines[i] = fmt.Sprintf(`    <landmark name="%s" category="%s">%s</landmark>`, l.Name, l.Category, l.Label)
	}
	return strings.Join(lines, "\n")
}

func formatPainPoints(points []domain.PainPoint, catalog *anatomy.Catalog) string {
	if len(points) == 0 {
		return "    " + emptyPainPoints
	}

	blocks := make([]string, len(points))
	for i, p := range points {
		var b strings.Builder
		b.WriteString("    <pain_point>\n")
		if name, ok := catalog.NameAt(p.Position); ok {
			fmt.Fprintf(&b, "      <landmark>%s</landmark>\n", name)
		} else if catalog != nil {
			fmt.Fprintf(&b, "      <position x=\"%s\" y=\"%s\" z=\"%s\"/>\n", formatFloat(p.Position.X), formatFloat(p.Position.Y), formatFloat(p.Position.Z))
		}
		fmt.Fprintf(&b, "      <label>%s</label>\n", p.Label)
		fmt.Fprintf(&b, "      <type>%s</type>\n", p.Type)
		fmt.Fprintf(&b, "      <rating>%d/10</rating>\n", p.Rating)
		if p.Notes != nil && *p.Notes != "" {
			fmt.Fprintf(&b, "      <notes>%s</notes>\n", *p.Notes)
		}
		b.WriteString("    </pain_point>")
		blocks[i] = b.String()
	}
	return strings.Join(blocks, "\n")
}

func formatHistory(slots []domain.HistorySlot) string {
	if len(slots) == 0 {
		return "    " + emptyHistory
	}

	blocks := make([]string, len(slots))
	for i, s := range slots {
		var b strings.Builder
		fmt.Fprintf(&b, "    <exchange index=\"%d\">\n", s.Index)
		if s.UserMessage != "" {
			fmt.Fprintf(&b, "      <user_message>%s</user_message>\n", s.UserMessage)
		}
		if s.Notes != nil && *s.Notes != "" {
			fmt.Fprintf(&b, "      <ai_notes>%s</ai_notes>\n", *s.Notes)
		}
		b.WriteString("    </exchange>")
		blocks[i] = b.String()
	}
	return strings.Join(blocks, "\n")
}

func formatCurrentNotes(slots []domain.HistorySlot) string {
	notes, ok := domain.LatestNotes(slots)
	if !ok {
		return "    " + emptyNotes
	}
	return "    " + notes
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
