package policy_compare

const goldPlanText = `Gold Health Plan. This health insurance policy provides medical coverage for members.
Monthly premium: $450 per member.
Annual deductible: $1,500 per individual.
Copay: $25 for primary care office visits.
Coinsurance: 20% after deductible.
Out-of-pocket maximum: $6,000 per year.
Hospital care services include inpatient stays and surgery.
Emergency care is covered at any hospital.
Exclusions: cosmetic procedures and experimental treatments are not covered.
To file a claim, submit the claim form within 90 days of service.`

const silverPlanText = `Silver Health Plan. This health insurance policy provides medical coverage for members.
Monthly premium: $320 per member.
Annual deductible: $3,000 per individual.
Copay: $40 for primary care office visits.
Coinsurance: 30% after deductible.
Out-of-pocket maximum: $8,500 per year.
Prescription coverage: generic drugs at participating pharmacies.
Exclusions: dental work, vision care and cosmetic procedures are not covered.
To file a claim, call member services within 60 days.`

func goldPlan() DocumentInput {
	return DocumentInput{ID: "p-gold", Title: "Gold Health Plan", Content: goldPlanText, Status: "publish"}
}

func silverPlan() DocumentInput {
	return DocumentInput{ID: "p-silver", Title: "Silver Health Plan", Content: silverPlanText, Status: "publish"}
}

func routerNotes() DocumentInput {
	return DocumentInput{
		ID:      "d-router",
		Title:   "Router Setup Notes",
		Content: "Configure the router with a static IP address and enable DHCP on the LAN.",
	}
}

func recipeNotes() DocumentInput {
	return DocumentInput{
		ID:      "d-recipe",
		Title:   "Weekend Recipes",
		Content: "Pasta with tomato sauce and fresh basil for dinner tonight.",
	}
}

func resume() DocumentInput {
	return DocumentInput{
		ID:    "d-resume",
		Title: "Jane Doe Resume",
		Content: "Full stack developer with 5 years of experience in React, TypeScript and Node.js. " +
			"Skills include MongoDB, Express and AWS.",
	}
}

func allFixtures() []DocumentInput {
	return []DocumentInput{goldPlan(), silverPlan(), routerNotes(), recipeNotes(), resume(), {ID: "t", Title: "Travel Plan"}}
}
