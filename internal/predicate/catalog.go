package predicate

import "claimgen/internal/domain"

// FieldSpec describes one addressable leaf in the audit data document.
type FieldSpec struct {
	Type   domain.FieldType `json:"type"`
	Values []string         `json:"values,omitempty"`
}

// Catalog is the authoring-side view of what conditions can reference: every
// known field path with its type (and enum values), plus the operator table.
type Catalog struct {
	FieldPaths map[string]FieldSpec                   `json:"fieldPaths"`
	Operators  map[domain.FieldType][]domain.Operator `json:"operators"`
}

var facilityFields = []string{"facilityName", "city", "country", "address", "additionalNotes"}

// FieldCatalog returns the static catalog for the audit data schema.
func FieldCatalog() Catalog {
	paths := map[string]FieldSpec{
		"productInfo.productName":     {Type: domain.FieldTypeString},
		"productInfo.productCategory": {Type: domain.FieldTypeString},
		"productInfo.description":     {Type: domain.FieldTypeString},
		"productInfo.auditScope": {
			Type:   domain.FieldTypeEnum,
			Values: []string{"Single Product", "Collection", "Brand-wide"},
		},
		"productInfo.targetMarket": {Type: domain.FieldTypeString},

		"materials.primary":          {Type: domain.FieldTypeString},
		"materials.secondary":        {Type: domain.FieldTypeString},
		"materials.recycledContent":  {Type: domain.FieldTypeNumber},
		"materials.originCountry":    {Type: domain.FieldTypeString},
		"materials.certifiedOrganic": {Type: domain.FieldTypeBoolean},

		"supplyChain.primaryManufacturingCountry": {Type: domain.FieldTypeString},
		"supplyChain.visibility.tier1Documented":  {Type: domain.FieldTypeBoolean},
		"supplyChain.visibility.tier2Documented":  {Type: domain.FieldTypeBoolean},
		"supplyChain.visibility.tier3Documented":  {Type: domain.FieldTypeBoolean},
		"supplyChain.visibility.thirdPartyAudits": {Type: domain.FieldTypeBoolean},

		"sustainability.environmental.chemicalManagement": {Type: domain.FieldTypeBoolean},
		"sustainability.environmental.waterTreatment":     {Type: domain.FieldTypeBoolean},
		"sustainability.environmental.wasteReduction":     {Type: domain.FieldTypeBoolean},
		"sustainability.primaryEnergySource":              {Type: domain.FieldTypeString},
		"sustainability.social.fairWage":                  {Type: domain.FieldTypeBoolean},
		"sustainability.social.workerSafety":              {Type: domain.FieldTypeBoolean},
		"sustainability.circularity.takeBackProgram":      {Type: domain.FieldTypeBoolean},
		"sustainability.circularity.repairService":        {Type: domain.FieldTypeBoolean},
		"sustainability.circularity.designedForRecyclability": {Type: domain.FieldTypeBoolean},
		"sustainability.circularity.durabilityTesting":        {Type: domain.FieldTypeBoolean},
		"sustainability.circularity.careInstructions":         {Type: domain.FieldTypeBoolean},
	}
	for _, facility := range []string{"mainFactory", "fabricSupplier", "dyehouse", "printingFacility"} {
		for _, field := range facilityFields {
			paths["supplyChain."+facility+"."+field] = FieldSpec{Type: domain.FieldTypeString}
		}
	}
	operators := make(map[domain.FieldType][]domain.Operator, len(domain.OperatorsForType))
	for ft, ops := range domain.OperatorsForType {
		operators[ft] = append([]domain.Operator(nil), ops...)
	}
	return Catalog{FieldPaths: paths, Operators: operators}
}
