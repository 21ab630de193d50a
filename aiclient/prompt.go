package aiclient

import "fmt"

// Default system prompts used when the caller supplies no override.
const (
	DefaultImageSystemPrompt = `You are an expert AI image generator. Create high-quality, detailed images based on user prompts. Focus on:
- Visual clarity and composition
- Appropriate lighting and atmosphere
- Rich detail and texture
- Professional quality output
- Safe, appropriate content only`

	DefaultEnhanceSystemPrompt = `You are a creative prompt enhancement assistant. Improve user prompts for AI image generation by:
- Adding specific visual details
- Including lighting and mood descriptions
- Specifying artistic techniques or styles
- Enhancing composition elements
- Maintaining the original creative intent
- Keeping prompts concise but descriptive`
)

// BuildImagePrompt assembles the composite prompt sent to the model: the
// base prompt, the style fragment, then a size hint.
func BuildImagePrompt(prompt, style, size string) string {
	full := prompt
	if style != "" {
		full += ", " + style
	}
	if size != "" {
		full += ", " + size + " resolution"
	}
	return full
}

// BuildEnhancementInstruction assembles the instruction for the enhancement
// model. The original prompt is quoted so the model rewrites it rather than
// answering it.
func BuildEnhancementInstruction(originalPrompt, styleContext string) string {
	instruction := fmt.Sprintf("Enhance this image generation prompt: %q\n\n", originalPrompt)
	if styleContext != "" {
		instruction += "Style context: " + styleContext + "\n"
	}
	instruction += "Please provide an enhanced version that adds specific visual details, lighting, mood, and composition elements while maintaining the original creative intent. Return only the enhanced prompt, no explanations."
	return instruction
}
