package ai

const verifySystemPrompt = `You verify whether a website belongs to a specific UK hotel.
You are given the hotel the user searched for and text scraped from a candidate website.
Answer with JSON only, no prose: {"match": true|false, "confidence": 0.0-1.0, "reason": "one sentence"}.
"match" is true only when the site is the hotel's own official website.
Online travel agencies, directories, review sites and chains' sibling properties are not a match.`

const extractSystemPrompt = `You extract canonical contact details for a UK hotel from its official website text.
Respond with JSON only, no prose, in exactly this shape:
{
  "uk_contact_phone": "+44... or null",
  "phone_type": "landline|mobile|non_geographic|freephone|null",
  "phone_source_url": "url or null",
  "rooms_min": number or null,
  "rooms_max": number or null,
  "rooms_source_notes": "short quote or null",
  "confidence": 0.0-1.0
}
Rules:
- Use only information present in the provided pages.
- Phone numbers must be UK numbers in E.164 form (+44...).
- Prefer the main reception or reservations number over event or spa lines.
- rooms_min equals rooms_max when a single count is stated.
- When candidate values found by pattern matching are listed, prefer confirming one of them over inventing a new value.
- Set fields to null rather than guessing.`
