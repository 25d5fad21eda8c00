package policy_compare

// keywordSet is a named list of lower-case phrases matched by substring.
// Sets are kept in slices, not maps, so ties resolve to the earlier set.
type keywordSet struct {
	name  string
	words []string
}

// Document types.
const (
	DocTypeTechnicalGuide  = "technical guide"
	DocTypeResume          = "resume/cv"
	DocTypeInsurancePolicy = "insurance policy"
	DocTypeLegalDocument   = "legal document"
	DocTypeHealthPolicy    = "health policy"
	DocTypeUnknown         = "unknown"
)

// Policy types.
const (
	PolicyTypeHealth     = "health"
	PolicyTypeAuto       = "auto"
	PolicyTypeHome       = "home"
	PolicyTypeLife       = "life"
	PolicyTypeDisability = "disability"
	PolicyTypeTravel     = "travel"
	PolicyTypeGeneral    = "general"
)

var documentTypeKeywords = []keywordSet{
	{DocTypeTechnicalGuide, []string{
		"configure", "configuration", "setup", "network", "router", "ip address",
		"wireless", "dhcp", "ssid", "packet tracer", "linksys", "static routing",
		"wan", "lan", "subnet", "gateway", "protocol", "cisco", "ccna",
	}},
	{DocTypeResume, []string{
		"experience", "years", "developer", "skills", "education", "programming",
		"projects", "technologies", "mongodb", "express", "angular", "node.js",
		"full stack", "backend", "frontend", "cognizant", "programmer analyst",
		"react", "typescript", "aws", "api", "database",
	}},
	{DocTypeInsurancePolicy, []string{
		"coverage", "premium", "deductible", "claim", "liability", "beneficiary",
		"policyholder", "underwriter", "exclusions", "riders", "copay", "coinsurance",
	}},
	{DocTypeLegalDocument, []string{
		"terms", "conditions", "agreement", "contract", "legal", "law", "regulation",
		"compliance", "liability", "jurisdiction", "governing law",
	}},
	{DocTypeHealthPolicy, []string{
		"health", "medical", "healthcare", "treatment", "patient", "clinic",
		"hospital", "medicine", "doctor", "prescription", "diagnosis",
	}},
}

// Policy-indicator families used by the isPolicyDocument gate.
var (
	strongPolicyIndicators = []string{
		"coverage", "premium", "deductible", "claim", "policy", "insured", "beneficiary",
		"liability", "protection", "exclusions", "policyholder", "underwriter",
	}

	healthPolicyIndicators = []string{
		"health insurance", "medical coverage", "healthcare", "health plan",
		"copay", "coinsurance", "out-of-pocket", "network provider", "provider network",
		"prescription", "pharmacy", "preventive care", "emergency care", "hospital",
		"medical services", "health benefits", "member", "patient", "doctor visit",
	}

	insuranceIndicators = []string{
		"insurance", "insurance company", "insurance plan", "insurer", "benefits",
		"covered services", "coverage area", "enrollment", "plan documents",
		"summary of benefits", "evidence of coverage", "plan year", "effective date",
	}

	financialIndicators = []string{
		"cost", "fee", "payment", "billing", "reimbursement", "allowable amount",
		"maximum", "limit", "annual", "monthly", "percentage", "dollar amount",
	}
)

var policyTypeKeywords = []keywordSet{
	{PolicyTypeHealth, []string{
		"health", "medical", "healthcare", "hospital", "doctor", "prescription", "treatment",
		"cigna", "aetna", "blue cross", "humana", "kaiser", "united healthcare",
		"preventive care", "emergency care", "specialist", "primary care", "physician",
		"copay", "coinsurance", "deductible", "out-of-pocket", "network", "provider",
		"pharmacy", "medication", "medical services", "health plan", "member",
		"inpatient", "outpatient", "ambulatory", "urgent care", "telehealth",
	}},
	{PolicyTypeAuto, []string{"auto", "vehicle", "car", "automotive", "collision", "comprehensive", "liability coverage"}},
	{PolicyTypeHome, []string{"home", "property", "dwelling", "homeowner", "residence", "renters"}},
	{PolicyTypeLife, []string{"life insurance", "life policy", "death benefit", "term life", "whole life", "beneficiary"}},
	{PolicyTypeDisability, []string{"disability", "income protection", "unable to work", "short term disability", "long term disability"}},
	{PolicyTypeTravel, []string{"travel", "trip", "vacation", "international coverage", "trip cancellation"}},
}

// coverageKeywords drive the keyword-asymmetry lines of the policy path.
var coverageKeywords = []string{"hospital", "emergency", "prescription", "dental", "vision", "specialist", "surgery"}
