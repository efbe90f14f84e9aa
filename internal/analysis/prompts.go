package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/BhavyaPagadala/urbix/internal/llm"
	"github.com/BhavyaPagadala/urbix/internal/report"
)

const defaultImageMIME = "image/jpeg"

var dataURIPrefix = regexp.MustCompile(`^data:(image/[a-zA-Z+]+);base64,`)

// responseSchema lists the seven fields every analysis must return.
func responseSchema() *llm.Schema {
	props := make(map[string]string, len(resultFields))
	for _, f := range resultFields {
		props[f] = "string"
	}
	return &llm.Schema{Properties: props, Required: resultFields}
}

// decodeImage splits an optional data: URI into MIME type and bare base64.
func decodeImage(image string) (llm.Image, bool) {
	image = strings.TrimSpace(image)
	if image == "" {
		return llm.Image{}, false
	}

	mime := defaultImageMIME
	if m := dataURIPrefix.FindStringSubmatch(image); m != nil {
		mime = m[1]
	}
	data := image
	if i := strings.Index(image, ","); i >= 0 {
		data = image[i+1:]
	}
	return llm.Image{MIMEType: mime, Data: data}, true
}

func categoryChoices() string {
	labels := make([]string, 0, len(report.Categories))
	for _, c := range report.Categories {
		labels = append(labels, c.Label())
	}
	last := labels[len(labels)-1]
	return strings.Join(labels[:len(labels)-1], ", ") + ", or " + last
}

func buildAnalysisPrompt(description string, hasImage bool) string {
	input := strings.TrimSpace(description)
	if input == "" {
		input = "No text provided."
	}

	evidence := "Use the text provided for analysis."
	if hasImage {
		evidence = "PRIORITY: A photo is provided. Carefully inspect the photo. " +
			"Use the visual evidence as the primary source for the Title, Description, and Category. " +
			"If the text and photo disagree, trust the photo."
	}

	var b strings.Builder
	b.WriteString("You are an expert urban intelligence analyst. Analyze this civic report.\n")
	fmt.Fprintf(&b, "User Input: %q\n\n", input)
	b.WriteString(evidence)
	b.WriteString("\n\nTasks:\n")
	b.WriteString("1. Title: Create a professional, concise title (3-5 words) based primarily on visual evidence if available.\n")
	b.WriteString("2. Description: Provide a detailed, clear description of the urban issue observed. Use simple English but be specific.\n")
	fmt.Fprintf(&b, "3. Category: Select the most appropriate category: %s.\n", categoryChoices())
	b.WriteString("4. Department: Suggest the relevant municipal department.\n")
	b.WriteString("5. Sentiment: Determine the public sentiment (positive, neutral, negative).\n")
	b.WriteString("6. Summary: A 1-sentence analytical summary for a governance dashboard.\n")
	b.WriteString("7. Priority: Low, Medium, or High (based on safety risk).\n\n")
	fmt.Fprintf(&b, "Respond with a single JSON object with the string keys: %s.", strings.Join(resultFields, ", "))
	return b.String()
}

func buildAnalysisMessages(description, image string) []llm.Message {
	img, hasImage := decodeImage(image)
	msg := llm.Message{Role: llm.RoleUser, Content: buildAnalysisPrompt(description, hasImage)}
	if hasImage {
		msg.Images = []llm.Image{img}
	}
	return []llm.Message{msg}
}

// pulseDigestSize caps how many reports feed the pulse summary.
const pulseDigestSize = 10

func buildPulsePrompt(reports []report.Report) string {
	if len(reports) > pulseDigestSize {
		reports = reports[:pulseDigestSize]
	}
	parts := make([]string, 0, len(reports))
	for _, r := range reports {
		parts = append(parts, fmt.Sprintf("%s (%s): %s", r.Category.Label(), r.Status, r.Sentiment))
	}
	return fmt.Sprintf("Urban Data Stream: %s. Synthesize a high-level, 1-sentence urban health summary.",
		strings.Join(parts, ", "))
}
