package ai

// SystemPrompt is attached to every model request. Models that reject system
// instructions fail the call and the error classifier reports it; there is no
// maintained deny-list of incompatible models.
const SystemPrompt = `You are a helpful, knowledgeable assistant.
Answer clearly and concisely. Use markdown formatting when it helps
readability. If you are unsure about something, say so rather than guessing.`
