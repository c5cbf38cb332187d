package generation

const variationPrefix = "Another unique variation of: "

// slotPrompt returns the text sent for a given slot. The first slot uses the
// raw prompt; later slots wrap it so the remote model does not return four
// near-identical images.
func slotPrompt(prompt string, slot int) string {
	if slot == 0 {
		return prompt
	}
	return variationPrefix + prompt
}
