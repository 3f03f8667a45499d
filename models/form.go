package models

// FormDate represents a date split into its form components
type FormDate struct {
	Day   string `json:"day"`
	Month string `json:"month"`
	Year  string `json:"year"`
}

// IsEmpty reports whether all date components are empty
func (d FormDate) IsEmpty() bool {
	return d.Day == "" && d.Month == "" && d.Year == ""
}

// String renders the date as day/month/year for violation values
func (d FormDate) String() string {
	return d.Day + "/" + d.Month + "/" + d.Year
}

// Address represents the address block of an intake form
type Address struct {
	Street      string `json:"street"`
	HouseNumber string `json:"houseNumber"`
	Entrance    string `json:"entrance"`
	Apartment   string `json:"apartment"`
	City        string `json:"city"`
	PostalCode  string `json:"postalCode"`
	POBox       string `json:"poBox"`
}

// MedicalInstitution represents the clinic-filled section of an intake form
type MedicalInstitution struct {
	HealthFundMember string `json:"healthFundMember"`
	NatureOfAccident string `json:"natureOfAccident"`
	MedicalDiagnoses string `json:"medicalDiagnoses"`
}

// FormRecord represents an extracted work-injury intake form.
// Field names and JSON keys follow the extraction schema exactly;
// all leaves are strings because forms carry free-handwritten values.
type FormRecord struct {
	LastName                 string             `json:"lastName"`
	FirstName                string             `json:"firstName"`
	IDNumber                 string             `json:"idNumber"`
	Gender                   string             `json:"gender"`
	DateOfBirth              FormDate           `json:"dateOfBirth"`
	Address                  Address            `json:"address"`
	LandlinePhone            string             `json:"landlinePhone"`
	MobilePhone              string             `json:"mobilePhone"`
	JobType                  string             `json:"jobType"`
	DateOfInjury             FormDate           `json:"dateOfInjury"`
	TimeOfInjury             string             `json:"timeOfInjury"`
	AccidentLocation         string             `json:"accidentLocation"`
	AccidentAddress          string             `json:"accidentAddress"`
	AccidentDescription      string             `json:"accidentDescription"`
	InjuredBodyPart          string             `json:"injuredBodyPart"`
	Signature                string             `json:"signature"`
	FormFillingDate          FormDate           `json:"formFillingDate"`
	FormReceiptDateAtClinic  FormDate           `json:"formReceiptDateAtClinic"`
	MedicalInstitutionFields MedicalInstitution `json:"medicalInstitutionFields"`
}

// Leaf represents a single scalar field of a FormRecord
type Leaf struct {
	Path  string
	Value string
}

// Leaves returns every scalar field with its dotted path, in schema order.
// The count is constant (35) regardless of how much of the form is filled.
func (r FormRecord) Leaves() []Leaf {
	leaves := []Leaf{
		{"lastName", r.LastName},
		{"firstName", r.FirstName},
		{"idNumber", r.IDNumber},
		{"gender", r.Gender},
	}
	leaves = append(leaves, dateLeaves("dateOfBirth", r.DateOfBirth)...)
	leaves = append(leaves,
		Leaf{"address.street", r.Address.Street},
		Leaf{"address.houseNumber", r.Address.HouseNumber},
		Leaf{"address.entrance", r.Address.Entrance},
		Leaf{"address.apartment", r.Address.Apartment},
		Leaf{"address.city", r.Address.City},
		Leaf{"address.postalCode", r.Address.PostalCode},
		Leaf{"address.poBox", r.Address.POBox},
		Leaf{"landlinePhone", r.LandlinePhone},
		Leaf{"mobilePhone", r.MobilePhone},
		Leaf{"jobType", r.JobType},
	)
	leaves = append(leaves, dateLeaves("dateOfInjury", r.DateOfInjury)...)
	leaves = append(leaves,
		Leaf{"timeOfInjury", r.TimeOfInjury},
		Leaf{"accidentLocation", r.AccidentLocation},
		Leaf{"accidentAddress", r.AccidentAddress},
		Leaf{"accidentDescription", r.AccidentDescription},
		Leaf{"injuredBodyPart", r.InjuredBodyPart},
		Leaf{"signature", r.Signature},
	)
	leaves = append(leaves, dateLeaves("formFillingDate", r.FormFillingDate)...)
	leaves = append(leaves, dateLeaves("formReceiptDateAtClinic", r.FormReceiptDateAtClinic)...)
	leaves = append(leaves,
		Leaf{"medicalInstitutionFields.healthFundMember", r.MedicalInstitutionFields.HealthFundMember},
		Leaf{"medicalInstitutionFields.natureOfAccident", r.MedicalInstitutionFields.NatureOfAccident},
		Leaf{"medicalInstitutionFields.medicalDiagnoses", r.MedicalInstitutionFields.MedicalDiagnoses},
	)
	return leaves
}

func dateLeaves(prefix string, d FormDate) []Leaf {
	return []Leaf{
		{prefix + ".day", d.Day},
		{prefix + ".month", d.Month},
		{prefix + ".year", d.Year},
	}
}

// SectionKeys lists the top-level JSON keys a complete record must carry
var SectionKeys = []string{
	"lastName", "firstName", "idNumber", "gender",
	"dateOfBirth", "address", "landlinePhone", "mobilePhone",
	"jobType", "dateOfInjury", "timeOfInjury", "accidentLocation",
	"accidentAddress", "accidentDescription", "injuredBodyPart",
	"signature", "formFillingDate", "formReceiptDateAtClinic",
	"medicalInstitutionFields",
}
