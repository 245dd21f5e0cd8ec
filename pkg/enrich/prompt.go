package enrich

import (
	"github.com/txjustice/media-enrich/pkg/llmextract"
	"github.com/txjustice/media-enrich/pkg/state"
)

// fieldDefinitions gives each MediaFeatureField the fixed natural-language
// description shown to the LLM, carried verbatim from
// original_source/src/merge/merge_node.py's FIELD_DEFINITIONS since spec.md
// §4.4 specifies the shape of this contract but not its exact wording.
var fieldDefinitions = map[state.MediaFeatureField]string{
	state.FieldOfficerName:    "Name of the police officer involved in the shooting. This person can be the shooter or the victim.",
	state.FieldCivilianName:   "Name of the civilian (non-officer) involved in the shooting. This person can be the shooter or the victim.",
	state.FieldCivilianAge:    "Age of the civilian in integers",
	state.FieldCivilianRace:   "Race/ethnicity of the civilian",
	state.FieldWeapon:         "Weapon involved in the incident, including type (e.g., handgun, rifle, knife, vehicle). Note which party possessed or used it if mentioned.",
	state.FieldLocationDetail: "Detailed location information such as street/business/landmark names",
	state.FieldTimeOfDay:      "Time of day when the incident occurred, as described in the article",
	state.FieldOutcome:        "Fatal or non-fatal outcome of the victim (police officer or the civilian)",
	state.FieldCircumstance:   "Any context or background regarding the incident such as the cause, complications",
}

// fieldDefinitionList renders fieldDefinitions into the ordered slice the
// LLM extractor client expects.
func fieldDefinitionList() []llmextract.FieldDefinition {
	defs := make([]llmextract.FieldDefinition, 0, len(state.AllMediaFeatureFields))
	for _, f := range state.AllMediaFeatureFields {
		defs = append(defs, llmextract.FieldDefinition{
			Name:        string(f),
			Description: fieldDefinitions[f],
		})
	}
	return defs
}
