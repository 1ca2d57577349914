package convert

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/teleops/dashstrap/models"
)

// Header names of the key columns in the customer records CSV.
const (
	colAccountID = "Customer Billing Account.CustomerBillingAccount.ID"
	colMSISDN    = "Digital Identity.NetworkCredential.ID (MSISDN)"
)

// Config holds the configuration for a conversion operation.
type Config struct {
	InputFile string
	OutputDir string
}

// ParseConfig parses command line arguments into a Config struct.
func ParseConfig(args []string) (*Config, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("at least 1 argument required (input csv file)")
	}

	config := &Config{
		InputFile: args[0],
		OutputDir: "tmf717_output",
	}

	if len(args) >= 2 && args[1] != "" {
		config.OutputDir = args[1]
	}

	return config, nil
}

// Run converts every row of the input CSV into a TMF717 Customer360 JSON
// document written to the output directory. Rows that fail to convert are
// logged and skipped. Returns the number of documents written.
func Run(config *Config) (int, error) {
	f, err := os.Open(config.InputFile)
	if err != nil {
		return 0, fmt.Errorf("error opening input file %s: %w", config.InputFile, err)
	}
	defer f.Close()

	if err := os.MkdirAll(config.OutputDir, 0o755); err != nil {
		return 0, fmt.Errorf("error creating output directory %s: %w", config.OutputDir, err)
	}

	reader := csv.NewReader(f)
	// Rows shorter than the header are padded with empty strings.
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err == io.EOF {
		return 0, fmt.Errorf("empty CSV file: %s", config.InputFile)
	}
	if err != nil {
		return 0, fmt.Errorf("error reading CSV header: %w", err)
	}

	written := 0
	for rowIndex := 1; ; rowIndex++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("Error reading row %d: %v", rowIndex, err)
			continue
		}

		if err := writeDocument(config.OutputDir, headers, row, rowIndex); err != nil {
			log.Printf("Error processing row %d: %v", rowIndex, err)
			continue
		}
		written++
	}

	return written, nil
}

func writeDocument(outputDir string, headers, row []string, rowIndex int) error {
	record := rowMap(headers, row)

	customerID := record[colAccountID]
	if customerID == "" {
		customerID = fmt.Sprintf("customer_%d", rowIndex)
	}

	doc := Customer360FromRecord(record)

	outputFile := filepath.Join(outputDir, sanitizeID(customerID)+".json")
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling customer %s: %w", customerID, err)
	}

	if err := os.WriteFile(outputFile, data, 0o644); err != nil {
		return fmt.Errorf("error writing %s: %w", outputFile, err)
	}

	return nil
}

// rowMap zips headers with row values. Missing cells become empty strings.
func rowMap(headers, row []string) map[string]string {
	record := make(map[string]string, len(headers))
	for i, header := range headers {
		if i < len(row) {
			record[header] = row[i]
		} else {
			record[header] = ""
		}
	}
	return record
}

// sanitizeID keeps letters and digits and replaces everything else with an
// underscore so the id is safe as a filename.
func sanitizeID(id string) string {
	var b strings.Builder
	for _, r := range id {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// Customer360FromRecord maps one CSV record onto the TMF717 Customer 360
// structure.
func Customer360FromRecord(record map[string]string) models.Customer360 {
	customerID := record[colAccountID]
	msisdn := record[colMSISDN]

	var endDateTime *string
	if end := record["Customer subscription end date"]; end != "" {
		endDateTime = &end
	}

	return models.Customer360{
		ID:                   customerID,
		Href:                 fmt.Sprintf("/customer360/%s", customerID),
		CustomerReferredID:   customerID,
		CustomerReferredName: fmt.Sprintf("Customer %s", msisdn),
		Status:               record["Subscription Status"],
		StatusReason:         statusReason(record),
		AccountHierarchy: []models.EntityRef{
			{
				ID:           customerID,
				Href:         fmt.Sprintf("/account/%s", customerID),
				Name:         "Main Account",
				ReferredType: "Account",
			},
		},
		AssociatedParty: []models.PartyRef{
			{
				ID:           msisdn,
				Href:         fmt.Sprintf("/individual/%s", msisdn),
				Role:         "MainUser",
				Name:         fmt.Sprintf("Customer %s", msisdn),
				ReferredType: "Individual",
			},
		},
		Characteristic: characteristics(record),
		RelatedEntity:  relatedEntities(record),
		RelatedParty: []models.PartyRef{
			{
				ID:           msisdn,
				Href:         fmt.Sprintf("/individual/%s", msisdn),
				Role:         "owner",
				Name:         fmt.Sprintf("Customer %s", msisdn),
				ReferredType: "Individual",
			},
		},
		ContactMedium: []models.ContactMedium{
			{
				MediumType:     "mobileNumber",
				Preferred:      true,
				Characteristic: models.MediumCharacteristic{PhoneNumber: msisdn},
			},
		},
		ValidFor: models.ValidFor{
			StartDateTime: record["Customer Subscription Start Date"],
			EndDateTime:   endDateTime,
		},
		BaseType:       "Customer360",
		SchemaLocation: "https://tmforum.org/oda/open-apis/Customer360-v4.0.0.json",
		Type:           "Customer360",
	}
}

func statusReason(record map[string]string) string {
	switch record["Churn Status"] {
	case "At Risk":
		return "At Risk of Churn"
	case "Churned":
		return record["Reason Of Churn"]
	default:
		return ""
	}
}

func characteristics(record map[string]string) []models.Characteristic {
	demographic := []struct {
		name      string
		valueType string
		key       string
	}{
		{"age", "number", "Party.Party Demographic.PartyDemographicValue.value(Age)"},
		{"ageGroup", "string", "Age Group"},
		{"gender", "string", "Party.Individual.gender"},
		{"incomeLevel", "string", "Party.Party Demographic.PartyDemographicValue.value(Income Level)"},
		{"education", "string", "Party.Party Demographic.PartyDemographicValue.value(Education)"},
		{"maritalStatus", "string", "Individual.maritalStatus (Family Structure)"},
		{"vipStatus", "string", "VIP Group"},
		{"churnScore", "number", "Churn Score"},
		{"churnStatus", "string", "Churn Status"},
		{"cltv", "number", "CLTV"},
		{"satisfactionScore", "number", "Satisfaction Score (Out of 5)"},
		{"noOfLines", "number", "No Of Lines"},
	}

	var chars []models.Characteristic
	for _, d := range demographic {
		chars = append(chars, models.Characteristic{Name: d.name, ValueType: d.valueType, Value: record[d.key]})
	}

	chars = append(chars, models.Characteristic{
		Name:      "atRiskCustomer",
		ValueType: "boolean",
		Value:     record["At Risk Customer(Based on usage or behaviour patterns)"] == "Yes",
	})

	counters := []struct {
		name string
		key  string
	}{
		{"numberOfComplaints", "Number of Compaints Raised"},
		{"relationshipLengthMonths", "Length of customer relationship (In Months)"},
		{"timeSinceLastEngagementMonths", "Time Since last purchase or engagement (In Months)"},
	}
	for _, c := range counters {
		chars = append(chars, models.Characteristic{Name: c.name, ValueType: "number", Value: record[c.key]})
	}

	chars = append(chars, models.Characteristic{
		Name:      "usagePeriod",
		ValueType: "object",
		Value: models.UsagePeriod{
			From: record["Usage From Period"],
			To:   record["Usage To Period"],
		},
	})

	consumption := []struct {
		name string
		key  string
	}{
		{"dataUploadGB", "Product.Networkproduct.ConsumptionSummary.value (Data Upload (In GB))"},
		{"dataDownloadGB", "Product.Networkproduct.ConsumptionSummary.value (Data Download (In GB))"},
		{"voiceMinutes", "Product.Networkproduct.ConsumptionSummary.value Voice (in Minutes)"},
		{"smsCount", "Product.Networkproduct.ConsumptionSummary.value (SMS (In Numbers))"},
		{"roamingVoiceMinutes", "Product.Networkproduct.ConsumptionSummary.value (International Roaming Voice (In Minutes)"},
		{"roamingDataUploadGB", "Product.Networkproduct.ConsumptionSummary.value (International Roaming Data Upload (In GB))"},
		{"roamingDataDownloadGB", "Product.Networkproduct.ConsumptionSummary.value (International Romaing Data Download (In GB))"},
		{"roamingSmsCount", "Product.Networkproduct.ConsumptionSummary.value (International Romaing SMS)"},
		{"ottUsageGB", "Product.Networkproduct.ConsumptionSummary.value (Consumed OTT usage (In GB))"},
		{"cloudStorage", "Product.Networkproduct.ConsumptionSummary.value (Cloud Storage)"},
	}
	for _, c := range consumption {
		chars = append(chars, models.Characteristic{Name: c.name, ValueType: "number", Value: record[c.key]})
	}

	chars = append(chars, models.Characteristic{
		Name:      "ratingGroup",
		ValueType: "string",
		Value:     record["Rating Group (Google, Youtube)"],
	})

	product := []struct {
		name      string
		valueType string
		key       string
	}{
		{"planType", "string", "productOffering.planType"},
		{"businessType", "string", "productOffering.businessType"},
		{"marketSegment", "string", "productOffering.market segment"},
		{"customerType", "string", "productOffering.customerType"},
		{"price", "number", "Price"},
		{"activationFee", "number", "Activation Fee"},
		{"contract", "string", "Contract"},
	}
	for _, p := range product {
		chars = append(chars, models.Characteristic{Name: p.name, ValueType: p.valueType, Value: record[p.key]})
	}

	chars = append(chars, models.Characteristic{
		Name:      "location",
		ValueType: "string",
		Value:     record["Location.Geographic Place.GeographicState.name"],
	})

	if reason := record["Reason Of Churn"]; reason != "" {
		chars = append(chars, models.Characteristic{
			Name:      "churnReason",
			ValueType: "string",
			Value:     reason,
		})
	}

	return chars
}

func relatedEntities(record map[string]string) []models.PartyRef {
	planID := record["Plan ID"]
	planName := record["Customer Plan Name"]
	msisdn := record[colMSISDN]

	return []models.PartyRef{
		{
			ID:           planID,
			Href:         fmt.Sprintf("/productOffering/%s", planID),
			Role:         "SubscribedPlan",
			Name:         planName,
			ReferredType: "ProductOffering",
		},
		{
			ID:           msisdn,
			Href:         fmt.Sprintf("/productInstance/%s", msisdn),
			Role:         "SubscribedProduct",
			Name:         "Mobile Service",
			ReferredType: "Product",
		},
	}
}
