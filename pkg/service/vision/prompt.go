package vision

// systemPrompt fixes the model's role for every inspection call
const systemPrompt = `You are a certified equipment inspector reviewing photographs of machinery and rocket components. You report observations factually and conservatively: never downplay visible damage, never invent damage that is not visible.`

// inspectionPrompt is the fixed per-image instruction. The wording matters:
// downstream scoring matches the assessment text against a severity lexicon,
// so the model is asked for concrete defect terminology.
const inspectionPrompt = `Inspect the attached component photograph.

1. Identify the component if recognizable.
2. Describe its visible condition using precise defect terminology
   (e.g. crack, fracture, leak, corrosion, erosion, deformation, pitting,
   scratch, scuff). If nothing is wrong, state that the component shows
   no anomalies and is within limits.
3. Note anything that would require closer human review.

Respond with a concise plain-text assessment of 2-4 sentences. Do not use
markdown, bullet lists, or headings.`
