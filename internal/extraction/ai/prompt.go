// internal/extraction/ai/prompt.go
package ai

// extractionPrompt instructs the model to read condensed guideline text and
// emit every program/tier as normalized JSON. The normalization rules mirror
// the deterministic extractors so both paths produce the same shape.
const extractionPrompt = `You are extracting lender underwriting criteria from equipment finance guideline PDFs.

The input text may include multiple *programs/tiers* and often uses tables + headings. Common patterns:
- Tier tables with columns like: "Tier 1  Tier 2  Tier 3" and rows like "FICO", "TIB", "PayNet".
- Credit grade sections like: "A Rates", "A+ Rates", "B Rates", "C Rates" with ticket-size ranges,
  plus separate "A Rate Guidelines" / "B Rate Guidelines" bullets containing FICO/PayNet/TIB.
- Caps written as: "App-only up to $200,000", "ALL IN $75,000", "Net Financed $15,000 to $50,000".
- Geography written as: "does not lend in CA, NV, ND, VT" or "will no longer provide financing in California".
- Restrictions lists under headings like "Restrictions" or "Excluded Industry/Equipment List".

TASK
Extract **all lender programs/tiers** and normalize into a JSON object with this exact shape:

{
  "programs": [
    {
      "name": "A+" | "A" | "B" | "C" | "Tier 1" | "Tier 2" | "Standard Program" | "<use doc label>",
      "tier": "A+" | "A" | "B" | "C" | "1" | "2" | "3" | null,
      "criteria": {
        "fico": { "min_score": 680, "max_score": null } | null,
        "paynet": { "min_score": 60, "max_score": null } | null,
        "loan_amount": { "min_amount": 10000, "max_amount": 250000 },
        "time_in_business": { "min_years": 2 } | null,
        "geographic": { "allowed_states": ["TX"], "excluded_states": ["CA"] } | null,
        "industry": { "allowed_industries": null, "excluded_industries": ["Trucking", "Oil & Gas"] } | null,
        "equipment": { "allowed_types": null, "excluded_types": ["Aircrafts/Boats"], "max_equipment_age_years": 15 } | null,
        "min_revenue": 3000000 | null,
        "custom_rules": [
          { "name": "US Citizen", "description": "US Citizen only" }
        ] | null
      }
    }
  ]
}

IMPORTANT NORMALIZATION RULES (based on these lender PDFs)
- **Programs**:
  - If the PDF has multiple credit grades (A+, A, B, C, etc.), create one program per grade.
  - If the PDF has a Tier 1/2/3 table, create one program per tier.
  - If the PDF has *conditional tables* (e.g. "If no PayNet", "Corp only"), create separate programs
    with names like "Tier 1 (No PayNet)" / "Corp Only" and capture the condition in ` + "`custom_rules`" + `.
- **Loan amount**:
  - Always output ` + "`loan_amount`" + ` with BOTH ` + "`min_amount`" + ` and ` + "`max_amount`" + ` as integers.
  - Use ticket-size ranges like "$10,000 - $49,999" as min/max.
  - Interpret "up to $X" / "<=$X" as max_amount = X. If no min is stated, set min_amount = 0.
  - Interpret "$X - $Y" as min_amount = X, max_amount = Y.
  - If the program truly has no loan amount, set {"min_amount": 0, "max_amount": 500000} and add a ` + "`custom_rules`" + `
    note: "Loan amount not specified in document section".
- **Time in business**:
  - "TIB" means time in business in years. If expressed in months, convert to years by rounding up (e.g. 18 months -> 2).
  - If there are multiple TIB numbers for a program, use the strictest (highest minimum).
- **FICO vs PayNet sanity checks**:
  - Only set FICO values if clearly on the 300-850 scale.
  - PayNet (MasterScore) is typically 0-100. In some extracted PDF text, PayNet may appear as 3-digit values
    around 600-799 (e.g. 660, 685, 700) due to OCR/text-extraction artifacts.
    - If a 3-digit PayNet value appears consistently and dividing by 10 yields a plausible 0-100 score,
      convert it by dividing by 10 and rounding to the nearest integer (e.g. 660 -> 66, 685 -> 69, 700 -> 70).
    - If conversion is not clearly supported by context, omit ` + "`paynet`" + ` and record the ambiguity in ` + "`custom_rules`" + `.
- **Equipment age**:
  - Convert "Equipment over 15 years old" or "Max Age of Collateral = 5 years" to ` + "`max_equipment_age_years`" + `.
- **Geography**:
  - Convert state lists to 2-letter codes and place them under excluded_states or allowed_states based on wording.
- **Industry vs equipment restrictions**:
  - Put clear business-type bans (e.g. "Gaming/Gambling", "Oil & Gas", "Adult Entertainment", "Restaurants") into ` + "`industry.excluded_industries`" + `.
  - Put equipment bans (e.g. "Aircrafts/Boats", "Electric Vehicles", "Copiers") into ` + "`equipment.excluded_types`" + `.
  - If ambiguous, prefer ` + "`custom_rules`" + ` rather than guessing.
- **Unmodeled rules**:
  - Add important constraints we don't model (e.g., "US Citizen only", "No BK in last 7 years", "No tax liens",
    "Trucking requires 5+ trucks", "Homeownership required") to ` + "`custom_rules`" + ` with short names + exact descriptions.

OUTPUT REQUIREMENTS
- Return ONLY the JSON object. No markdown, no commentary, no trailing commas.
`
