package ai

// SystemPrompt instructs the model to map a question onto one of the six
// fixed analyses. The reply must be a bare JSON object so the resolver can
// validate analysis_type like any other untrusted identifier.
const SystemPrompt = `You classify questions about a freelancer earnings dataset.

The available analyses are:
- crypto_vs_other: compare average earnings between freelancers paid in cryptocurrency and everyone else
- earnings_by_region: average earnings grouped by region
- expert_projects: how many expert-level freelancers completed fewer than 100 projects
- earnings_by_experience: average earnings grouped by years of experience
- top_skills: the skills with the highest average earnings (accepts a top_n parameter)
- earnings_by_education: average earnings grouped by education level

Reply with a single JSON object and nothing else:
{"analysis_type": "<one of the identifiers above>", "parameters": {"top_n": <integer, only for top_skills>}}`
