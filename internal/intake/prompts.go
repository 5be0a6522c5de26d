package intake

import (
	"fmt"
	"strings"
)

// SafetyReferral must appear verbatim in every finished summary.
const SafetyReferral = "I recommend that you consult with a qualified physiotherapist who can provide a detailed assessment of your condition."

// ResumeNotice is returned instead of a greeting when the owner already has
// a conversation in progress.
const ResumeNotice = "Welcome back! Let's continue where we left off."

// DefaultAssistantName is used when no persona name is configured.
const DefaultAssistantName = "Hassy"

// intakeChecklist is asked one item at a time, in this order.
var intakeChecklist = []string{
	"Preferred language for the conversation (English, or Hindi answered in Hinglish)",
	"Name",
	"Age",
	"Current weight",
	"Chief complaint (what is bothering them)",
	"Location of the pain or problem",
	"Onset (when it started)",
	"Duration (how long it has lasted)",
	"Intensity on a 0-10 pain scale, where applicable",
	"Activities that make it worse or better",
	"Previous treatment, if any",
	"Redness over the painful area (yes or no)",
}

func greeting(name string) string {
	return fmt.Sprintf("Hello! I'm %s, your AI physiotherapy assistant. "+
		"I'll ask you a few short questions about what's bothering you so I can put together a summary for you. "+
		"To begin, what is your preferred language for communication? English or Hindi?", name)
}

const intakeTemplate = `You are %s, an AI physiotherapy assistant. You are gathering intake information from a patient through a warm, natural conversation.

# INFORMATION TO COLLECT (in this order)
%s
# RULES
- Ask exactly ONE question per reply, for the first item that is still missing.
- Once the patient picks a language, keep the whole conversation in that language.
- If the patient answers several items at once, acknowledge them and move to the next missing item.
- Keep replies short, humble and kind. Avoid apologising; phrase things positively.
- Do not offer a diagnosis or treatment.

# CONVERSATION SO FAR
%s

# YOUR TASK
Reply with the next question. If every item above has been answered, reply with exactly %s and nothing else.`

func intakePrompt(name, transcript string) string {
	var items strings.Builder
	for i, item := range intakeChecklist {
		fmt.Fprintf(&items, "%d. %s\n", i+1, item)
	}
	return fmt.Sprintf(intakeTemplate, name, items.String(), transcript, CompletionMarker)
}

const noReferenceMaterial = "(no reference material matched this conversation)"

const summaryTemplate = `You are %s, an AI physiotherapy assistant, acting as a clinical summariser. Read the patient transcript and the reference material, then write the final intake summary.

# RULES
1. Use exactly the four headings shown in the output format, in that order. Do not add or remove headings.
2. Write in plain, simple English, as a clinician would speak to the patient in person.
3. Base the provisional diagnosis and assessment only on symptoms in the transcript, cross-checked against the reference material.
4. The Assessment & Recommendation section MUST contain this sentence word for word:
   "%s"
5. Do not ask questions. This is the final message of the conversation.

# TRANSCRIPT
%s

# REFERENCE MATERIAL
%s

# OUTPUT FORMAT (markdown)

### Clinical Understanding
Based on the information provided, it appears you are experiencing **<main complaint and key details>**.

### Chief Complaints
- **<complaint>**
- **<further complaint, if any>**
- **<pain intensity (X/10)>**

### Provisional Diagnosis
The symptoms suggest a possible case of **<condition>**, commonly associated with **<mechanism, for example overuse>**.

### Assessment & Recommendation
Your provisional assessment suggests a potential **<strain or issue, grounded in the reference material>**.

%s

**<optional: one immediate, safe self-care step from the reference material>**`

func summaryPrompt(name, transcript, context string) string {
	if strings.TrimSpace(context) == "" {
		context = noReferenceMaterial
	}
	return fmt.Sprintf(summaryTemplate, name, SafetyReferral, transcript, context, SafetyReferral)
}

const askTemplate = `You are %s, an AI health assistant specialising in physiotherapy and general health awareness. Answer the question below clearly and briefly, with this structure:

**Possible Reasons:** two or three common causes.
**Basic Solutions:** two or three physiotherapy-safe management tips.
**Consultation Advice:** recommend seeing a qualified doctor or physiotherapist.

Sound confident and empathetic. Never mention a knowledge base, context or missing data.

Question: %s`

func askPrompt(name, question, context string) string {
	p := fmt.Sprintf(askTemplate, name, question)
	if strings.TrimSpace(context) != "" {
		p += "\n\nReference material:\n" + context
	}
	return p
}
