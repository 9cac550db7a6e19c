package stedi

// Wire types for the real-time eligibility endpoint. Only the fields the
// mapper reads are declared.

type eligibilityRequest struct {
	ControlNumber           string            `json:"controlNumber"`
	TradingPartnerServiceID string            `json:"tradingPartnerServiceId"`
	ExternalPatientID       string            `json:"externalPatientId"`
	Encounter               requestEncounter  `json:"encounter"`
	Provider                requestProvider   `json:"provider"`
	Subscriber              requestSubscriber `json:"subscriber"`
}

type requestEncounter struct {
	ServiceTypeCodes []string `json:"serviceTypeCodes"`
}

type requestProvider struct {
	NPI              string `json:"npi"`
	OrganizationName string `json:"organizationName"`
}

type requestSubscriber struct {
	MemberID    string `json:"memberId,omitempty"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
}

type eligibilityResponse struct {
	ControlNumber       string             `json:"controlNumber"`
	TradingPartnerID    string             `json:"tradingPartnerServiceId"`
	Payer               apiPayer           `json:"payer"`
	Subscriber          apiSubscriber      `json:"subscriber"`
	PlanInformation     apiPlanInformation `json:"planInformation"`
	PlanDateInformation apiPlanDates       `json:"planDateInformation"`
	PlanStatus          []apiPlanStatus    `json:"planStatus"`
	BenefitsInformation []apiBenefit       `json:"benefitsInformation"`
	Errors              []apiError         `json:"errors"`
}

type apiPayer struct {
	Name                string `json:"name"`
	PayorIdentification string `json:"payorIdentification"`
}

type apiSubscriber struct {
	MemberID    string `json:"memberId"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"`
	GroupNumber string `json:"groupNumber"`
}

type apiPlanInformation struct {
	GroupNumber      string `json:"groupNumber"`
	GroupDescription string `json:"groupDescription"`
	PlanDescription  string `json:"planDescription"`
}

type apiPlanDates struct {
	Plan             string `json:"plan"`
	PlanBegin        string `json:"planBegin"`
	PlanEnd          string `json:"planEnd"`
	EligibilityBegin string `json:"eligibilityBegin"`
	EligibilityEnd   string `json:"eligibilityEnd"`
}

type apiPlanStatus struct {
	StatusCode       string   `json:"statusCode"`
	Status           string   `json:"status"`
	PlanDetails      string   `json:"planDetails"`
	ServiceTypeCodes []string `json:"serviceTypeCodes"`
}

type apiBenefit struct {
	Code                       string               `json:"code"`
	Name                       string               `json:"name"`
	CoverageLevelCode          string               `json:"coverageLevelCode"`
	ServiceTypeCodes           []string             `json:"serviceTypeCodes"`
	InsuranceTypeCode          string               `json:"insuranceTypeCode"`
	PlanCoverage               string               `json:"planCoverage"`
	TimeQualifierCode          string               `json:"timeQualifierCode"`
	BenefitAmount              string               `json:"benefitAmount"`
	BenefitPercent             string               `json:"benefitPercent"`
	InPlanNetworkIndicatorCode string               `json:"inPlanNetworkIndicatorCode"`
	BenefitsServiceDelivery    []apiServiceDelivery `json:"benefitsServiceDelivery"`
	AdditionalInformation      []apiAdditionalInfo  `json:"additionalInformation"`
	BenefitsDateInformation    apiBenefitDates      `json:"benefitsDateInformation"`
}

type apiServiceDelivery struct {
	QuantityQualifierCode   string `json:"quantityQualifierCode"`
	Quantity                string `json:"quantity"`
	NumOfPeriods            string `json:"numOfPeriods"`
	TimePeriodQualifierCode string `json:"timePeriodQualifierCode"`
}

type apiAdditionalInfo struct {
	Description string `json:"description"`
}

type apiBenefitDates struct {
	LatestVisitOrConsultation string `json:"latestVisitOrConsultation"`
}

type apiError struct {
	Code                string `json:"code"`
	Description         string `json:"description"`
	FollowupAction      string `json:"followupAction"`
	PossibleResolutions string `json:"possibleResolutions"`
}
