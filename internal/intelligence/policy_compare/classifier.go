package policy_compare

// Classification is the output of the document classifier.
type Classification struct {
	DocumentType     string
	PolicyType       string
	IsPolicyDocument bool
}

// documentTypeMinScore is the percentage of a type's keywords that must match.
const documentTypeMinScore = 20.0

// Classify labels normalized text with a document type, a policy type and
// the policy-document gate.
func Classify(text string) Classification {
	return Classification{
		DocumentType:     DetectDocumentType(text),
		PolicyType:       DetectPolicyType(text),
		IsPolicyDocument: IsPolicyDocument(text),
	}
}

// DetectDocumentType returns the type whose keyword hit percentage is highest
// and above 20, or "unknown".
func DetectDocumentType(text string) string {
	best := DocTypeUnknown
	highest := 0.0
	for _, set := range documentTypeKeywords {
		score := float64(countContained(text, set.words)) / float64(len(set.words)) * 100
		if score > highest && score > documentTypeMinScore {
			highest = score
			best = set.name
		}
	}
	return best
}

// IsPolicyDocument applies the four-way OR gate over the indicator families.
// Short texts rarely hit a single strict threshold, hence the alternatives.
func IsPolicyDocument(text string) bool {
	strong := countContained(text, strongPolicyIndicators)
	health := countContained(text, healthPolicyIndicators)
	insurance := countContained(text, insuranceIndicators)
	financial := countContained(text, financialIndicators)

	return strong >= 2 ||
		health >= 3 ||
		(insurance >= 2 && financial >= 2) ||
		strong+health+insurance+financial >= 5
}

// DetectPolicyType returns the policy type with the highest keyword ratio,
// or "general" when no type matches at all.
func DetectPolicyType(text string) string {
	best := PolicyTypeGeneral
	maxRatio := 0.0
	for _, set := range policyTypeKeywords {
		matches := countContained(text, set.words)
		ratio := float64(matches) / float64(len(set.words))
		if matches >= 1 && ratio > maxRatio {
			maxRatio = ratio
			best = set.name
		}
	}
	return best
}
