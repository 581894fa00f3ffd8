package wizard

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/garnizeh/helpermatch/pkg/models"
)

// Overseas is one overseas-experience entry as edited in the form.
type Overseas struct {
	Country  string `json:"country"`
	Duration string `json:"duration"`
}

// Duty is one previous-employment entry as edited in the form.
type Duty struct {
	WorkingCountry     string `json:"working_country"`
	DurationFrom       string `json:"duration_from"`
	DurationTo         string `json:"duration_to"`
	Salary             string `json:"salary"`
	ReasonToLeave      string `json:"reason_to_leave"`
	EmployerFamilyInfo string `json:"employer_family_info"`

	models.Skills

	BabyAgeRange     string `json:"baby_age_range"`
	ToddlerAgeRange  string `json:"toddler_age_range"`
	ChildrenAgeRange string `json:"children_age_range"`
}

// Form is the shared state of the wizard. Numbers are kept as the text the
// user typed and converted on submit.
type Form struct {
	PhotoURL      string `json:"photo_url"`
	Name          string `json:"name"`
	Nationality   string `json:"nationality"`
	Gender        string `json:"gender"`
	DateOfBirth   string `json:"date_of_birth"`
	MaritalStatus string `json:"marital_status"`
	Education     string `json:"education"`
	Religion      string `json:"religion"`
	HeightCM      string `json:"height_cm"`
	WeightKG      string `json:"weight_kg"`
	BirthOrder    string `json:"birth_order"`
	NumBrothers   string `json:"num_brothers"`
	NumSisters    string `json:"num_sisters"`
	NumSons       string `json:"num_sons"`
	SonAges       string `json:"son_ages"`
	NumDaughters  string `json:"num_daughters"`
	DaughterAges  string `json:"daughter_ages"`

	HKID            string `json:"hkid"`
	HKMobile        string `json:"hk_mobile"`
	ContractEndDate string `json:"contract_end_date"`

	models.Skills

	LangMandarin  string `json:"lang_mandarin"`
	LangCantonese string `json:"lang_cantonese"`
	LangEnglish   string `json:"lang_english"`

	Overseas []Overseas `json:"overseas"`
	Duties   []Duty     `json:"duties"`

	EatsPork         models.YesNo `json:"eats_pork"`
	AvailableSundays models.YesNo `json:"available_sundays"`
	CanShareRoom     models.YesNo `json:"can_share_room"`
	ShareRoomNotes   string       `json:"share_room_notes"`
	HasTattoo        models.YesNo `json:"has_tattoo"`
	Smokes           models.YesNo `json:"smokes"`
	AfraidOfPets     models.YesNo `json:"afraid_of_pets"`
	HadSurgery       models.YesNo `json:"had_surgery"`
	SurgeryDetails   string       `json:"surgery_details"`
	HasAllergies     models.YesNo `json:"has_allergies"`
	AllergyDetails   string       `json:"allergy_details"`

	Remark string `json:"remark"`
}

const (
	defaultNationality = "Filipino"
	defaultGender      = "F"
)

// NewForm returns the empty form a new registration starts from.
func NewForm() Form {
	return Form{
		Nationality: defaultNationality,
		Gender:      defaultGender,
		Overseas:    []Overseas{},
		Duties:      []Duty{},
	}
}

// Merge applies a partial JSON object to the form. Fields absent from patch
// keep their current value; list fields present in patch are replaced whole.
func (f *Form) Merge(patch []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(patch, &keys); err != nil {
		return err
	}
	// encoding/json decodes list elements over the existing ones, so present
	// lists are cleared first.
	if _, ok := keys["overseas"]; ok {
		f.Overseas = nil
	}
	if _, ok := keys["duties"]; ok {
		f.Duties = nil
	}
	if err := json.Unmarshal(patch, f); err != nil {
		return err
	}
	if f.Overseas == nil {
		f.Overseas = []Overseas{}
	}
	if f.Duties == nil {
		f.Duties = []Duty{}
	}
	return nil
}

// HKIDState is the advisory validation state of the HKID field: "" while
// empty, otherwise "ok" or "error".
func (f Form) HKIDState() string {
	if f.HKID == "" {
		return ""
	}
	if ValidateHKID(f.HKID) {
		return "ok"
	}
	return "error"
}

// Worker converts the form into a worker row for userID. Status is left for
// the store to set.
func (f Form) Worker(userID string) *models.Worker {
	return &models.Worker{
		UserID:           userID,
		PhotoURL:         strOrNil(f.PhotoURL),
		Name:             f.Name,
		Nationality:      strOrNil(f.Nationality),
		Gender:           strOrNil(f.Gender),
		DateOfBirth:      strOrNil(f.DateOfBirth),
		MaritalStatus:    strOrNil(f.MaritalStatus),
		Education:        strOrNil(f.Education),
		Religion:         strOrNil(f.Religion),
		HeightCM:         intOrNil(f.HeightCM),
		WeightKG:         intOrNil(f.WeightKG),
		BirthOrder:       intOrNil(f.BirthOrder),
		NumBrothers:      intOrZero(f.NumBrothers),
		NumSisters:       intOrZero(f.NumSisters),
		NumSons:          intOrZero(f.NumSons),
		SonAges:          strOrNil(f.SonAges),
		NumDaughters:     intOrZero(f.NumDaughters),
		DaughterAges:     strOrNil(f.DaughterAges),
		HKID:             strOrNil(f.HKID),
		HKMobile:         strOrNil(f.HKMobile),
		ContractEndDate:  strOrNil(f.ContractEndDate),
		Skills:           f.Skills,
		LangMandarin:     strOrNil(f.LangMandarin),
		LangCantonese:    strOrNil(f.LangCantonese),
		LangEnglish:      strOrNil(f.LangEnglish),
		EatsPork:         f.EatsPork,
		AvailableSundays: f.AvailableSundays,
		CanShareRoom:     f.CanShareRoom,
		ShareRoomNotes:   strOrNil(f.ShareRoomNotes),
		HasTattoo:        f.HasTattoo,
		Smokes:           f.Smokes,
		AfraidOfPets:     f.AfraidOfPets,
		HadSurgery:       f.HadSurgery,
		SurgeryDetails:   strOrNil(f.SurgeryDetails),
		HasAllergies:     f.HasAllergies,
		AllergyDetails:   strOrNil(f.AllergyDetails),
		Remark:           strOrNil(f.Remark),
	}
}

// OverseasRows keeps the entries with a country, ordered as shown.
func (f Form) OverseasRows() []models.OverseasExperience {
	var out []models.OverseasExperience
	for _, o := range f.Overseas {
		if o.Country == "" {
			continue
		}
		out = append(out, models.OverseasExperience{
			Country:      o.Country,
			Duration:     strOrNil(o.Duration),
			DisplayOrder: len(out),
		})
	}
	return out
}

// DutyRows keeps every duty; job_order is 1-based.
func (f Form) DutyRows() []models.PreviousDuty {
	out := make([]models.PreviousDuty, 0, len(f.Duties))
	for i, d := range f.Duties {
		out = append(out, models.PreviousDuty{
			JobOrder:           i + 1,
			WorkingCountry:     strOrNil(d.WorkingCountry),
			DurationFrom:       strOrNil(d.DurationFrom),
			DurationTo:         strOrNil(d.DurationTo),
			Salary:             strOrNil(d.Salary),
			ReasonToLeave:      strOrNil(d.ReasonToLeave),
			EmployerFamilyInfo: strOrNil(d.EmployerFamilyInfo),
			Skills:             d.Skills,
			BabyAgeRange:       strOrNil(d.BabyAgeRange),
			ToddlerAgeRange:    strOrNil(d.ToddlerAgeRange),
			ChildrenAgeRange:   strOrNil(d.ChildrenAgeRange),
		})
	}
	return out
}

// FromStored rebuilds the form an edit session starts from.
func FromStored(w *models.Worker, overseas []models.OverseasExperience, duties []models.PreviousDuty) Form {
	f := Form{
		PhotoURL:         deref(w.PhotoURL),
		Name:             w.Name,
		Nationality:      derefOr(w.Nationality, defaultNationality),
		Gender:           derefOr(w.Gender, defaultGender),
		DateOfBirth:      deref(w.DateOfBirth),
		MaritalStatus:    deref(w.MaritalStatus),
		Education:        deref(w.Education),
		Religion:         deref(w.Religion),
		HeightCM:         intText(w.HeightCM),
		WeightKG:         intText(w.WeightKG),
		BirthOrder:       intText(w.BirthOrder),
		NumBrothers:      strconv.Itoa(w.NumBrothers),
		NumSisters:       strconv.Itoa(w.NumSisters),
		NumSons:          strconv.Itoa(w.NumSons),
		SonAges:          deref(w.SonAges),
		NumDaughters:     strconv.Itoa(w.NumDaughters),
		DaughterAges:     deref(w.DaughterAges),
		HKID:             deref(w.HKID),
		HKMobile:         deref(w.HKMobile),
		ContractEndDate:  deref(w.ContractEndDate),
		Skills:           w.Skills,
		LangMandarin:     deref(w.LangMandarin),
		LangCantonese:    deref(w.LangCantonese),
		LangEnglish:      deref(w.LangEnglish),
		Overseas:         make([]Overseas, 0, len(overseas)),
		Duties:           make([]Duty, 0, len(duties)),
		EatsPork:         w.EatsPork,
		AvailableSundays: w.AvailableSundays,
		CanShareRoom:     w.CanShareRoom,
		ShareRoomNotes:   deref(w.ShareRoomNotes),
		HasTattoo:        w.HasTattoo,
		Smokes:           w.Smokes,
		AfraidOfPets:     w.AfraidOfPets,
		HadSurgery:       w.HadSurgery,
		SurgeryDetails:   deref(w.SurgeryDetails),
		HasAllergies:     w.HasAllergies,
		AllergyDetails:   deref(w.AllergyDetails),
		Remark:           deref(w.Remark),
	}
	for _, o := range overseas {
		f.Overseas = append(f.Overseas, Overseas{Country: o.Country, Duration: deref(o.Duration)})
	}
	for _, d := range duties {
		f.Duties = append(f.Duties, Duty{
			WorkingCountry:     deref(d.WorkingCountry),
			DurationFrom:       deref(d.DurationFrom),
			DurationTo:         deref(d.DurationTo),
			Salary:             deref(d.Salary),
			ReasonToLeave:      deref(d.ReasonToLeave),
			EmployerFamilyInfo: deref(d.EmployerFamilyInfo),
			Skills:             d.Skills,
			BabyAgeRange:       deref(d.BabyAgeRange),
			ToddlerAgeRange:    deref(d.ToddlerAgeRange),
			ChildrenAgeRange:   deref(d.ChildrenAgeRange),
		})
	}
	return f
}

// parseLeadingInt reads an optionally signed integer prefix after leading
// whitespace, ignoring anything that follows ("170cm" is 170).
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// intOrNil treats zero and unparsable input as absent.
func intOrNil(s string) *int {
	n, ok := parseLeadingInt(s)
	if !ok || n == 0 {
		return nil
	}
	return &n
}

func intOrZero(s string) int {
	n, _ := parseLeadingInt(s)
	return n
}

func strOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefOr(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}

func intText(i *int) string {
	if i == nil || *i == 0 {
		return ""
	}
	return strconv.Itoa(*i)
}
