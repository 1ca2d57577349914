package models

// Customer360 is the TMF717 Customer 360 Management document generated for
// one customer record row.
type Customer360 struct {
	ID                   string           `json:"id"`
	Href                 string           `json:"href"`
	CustomerReferredID   string           `json:"customerReferredId"`
	CustomerReferredName string           `json:"customerReferredName"`
	Status               string           `json:"status"`
	StatusReason         string           `json:"statusReason"`
	AccountHierarchy     []EntityRef      `json:"accountHierarchy"`
	AssociatedParty      []PartyRef       `json:"associatedParty"`
	Characteristic       []Characteristic `json:"characteristic"`
	RelatedEntity        []PartyRef       `json:"relatedEntity"`
	RelatedParty         []PartyRef       `json:"relatedParty"`
	ContactMedium        []ContactMedium  `json:"contactMedium"`
	ValidFor             ValidFor         `json:"validFor"`
	BaseType             string           `json:"@baseType"`
	SchemaLocation       string           `json:"@schemaLocation"`
	Type                 string           `json:"@type"`
}

type EntityRef struct {
	ID           string `json:"id"`
	Href         string `json:"href"`
	Name         string `json:"name"`
	ReferredType string `json:"referredType"`
}

type PartyRef struct {
	ID           string `json:"id"`
	Href         string `json:"href"`
	Role         string `json:"role"`
	Name         string `json:"name"`
	ReferredType string `json:"referredType"`
}

// Characteristic value is a string for most entries, a bool for
// atRiskCustomer and a nested object for usagePeriod.
type Characteristic struct {
	Name      string `json:"name"`
	ValueType string `json:"valueType"`
	Value     any    `json:"value"`
}

type ContactMedium struct {
	MediumType     string               `json:"mediumType"`
	Preferred      bool                 `json:"preferred"`
	Characteristic MediumCharacteristic `json:"characteristic"`
}

type MediumCharacteristic struct {
	PhoneNumber string `json:"phoneNumber"`
}

// ValidFor holds the subscription period. EndDateTime is null for active
// subscriptions.
type ValidFor struct {
	StartDateTime string  `json:"startDateTime"`
	EndDateTime   *string `json:"endDateTime"`
}

// UsagePeriod is the value of the usagePeriod characteristic.
type UsagePeriod struct {
	From string `json:"from"`
	To   string `json:"to"`
}
