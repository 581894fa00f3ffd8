package models

// Skills are independent capability flags shared by a worker profile and each
// of their previous duties.
type Skills struct {
	CareBabies    bool `json:"skill_care_babies" db:"skill_care_babies"`
	CareToddler   bool `json:"skill_care_toddler" db:"skill_care_toddler"`
	CareChildren  bool `json:"skill_care_children" db:"skill_care_children"`
	CareElderly   bool `json:"skill_care_elderly" db:"skill_care_elderly"`
	CareDisabled  bool `json:"skill_care_disabled" db:"skill_care_disabled"`
	CareBedridden bool `json:"skill_care_bedridden" db:"skill_care_bedridden"`
	CarePet       bool `json:"skill_care_pet" db:"skill_care_pet"`
	Household     bool `json:"skill_household" db:"skill_household"`
	CarWashing    bool `json:"skill_car_washing" db:"skill_car_washing"`
	Gardening     bool `json:"skill_gardening" db:"skill_gardening"`
	Cooking       bool `json:"skill_cooking" db:"skill_cooking"`
	Driving       bool `json:"skill_driving" db:"skill_driving"`
	PickupTaobao  bool `json:"skill_pickup_taobao" db:"skill_pickup_taobao"`
}

// SkillColumns lists the skill columns in display order.
var SkillColumns = []string{
	"skill_care_babies",
	"skill_care_toddler",
	"skill_care_children",
	"skill_care_elderly",
	"skill_care_disabled",
	"skill_care_bedridden",
	"skill_care_pet",
	"skill_household",
	"skill_car_washing",
	"skill_gardening",
	"skill_cooking",
	"skill_driving",
	"skill_pickup_taobao",
}

var skillLabels = []string{
	"照顧嬰兒",
	"照顧幼童",
	"照顧小童",
	"照顧長者",
	"照顧傷殘",
	"照顧臥床",
	"照顧寵物",
	"家務",
	"洗車",
	"打理花園",
	"烹飪",
	"駕駛",
	"代購淘寶",
}

// Flags returns the flags in SkillColumns order.
func (s Skills) Flags() []bool {
	return []bool{
		s.CareBabies, s.CareToddler, s.CareChildren, s.CareElderly,
		s.CareDisabled, s.CareBedridden, s.CarePet, s.Household,
		s.CarWashing, s.Gardening, s.Cooking, s.Driving, s.PickupTaobao,
	}
}

// Ptrs returns pointers to the flags in SkillColumns order, for row scanning.
func (s *Skills) Ptrs() []any {
	return []any{
		&s.CareBabies, &s.CareToddler, &s.CareChildren, &s.CareElderly,
		&s.CareDisabled, &s.CareBedridden, &s.CarePet, &s.Household,
		&s.CarWashing, &s.Gardening, &s.Cooking, &s.Driving, &s.PickupTaobao,
	}
}

// Values returns the flags as query arguments in SkillColumns order.
func (s Skills) Values() []any {
	flags := s.Flags()
	out := make([]any, len(flags))
	for i, f := range flags {
		out[i] = f
	}
	return out
}

// Labels returns the display labels of the set flags.
func (s Skills) Labels() []string {
	var out []string
	for i, f := range s.Flags() {
		if f {
			out = append(out, skillLabels[i])
		}
	}
	return out
}
