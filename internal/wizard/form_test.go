package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garnizeh/helpermatch/pkg/models"
)

func TestValidateHKID(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"A123456(7)", true},
		{"AB123456(A)", true},
		{"a123456(7)", true},
		{"A12345(7)", false},
		{"A123456-7", false},
		{"ABC123456(7)", false},
		{"A123456(B)", false},
		{"", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ValidateHKID(c.in), c.in)
	}
}

func TestHKIDStateIsAdvisory(t *testing.T) {
	f := NewForm()
	assert.Equal(t, "", f.HKIDState())
	f.HKID = "A123456(7)"
	assert.Equal(t, "ok", f.HKIDState())
	f.HKID = "A123456-7"
	assert.Equal(t, "error", f.HKIDState())
}

func TestNewFormDefaults(t *testing.T) {
	f := NewForm()
	assert.Equal(t, "Filipino", f.Nationality)
	assert.Equal(t, "F", f.Gender)
	assert.Empty(t, f.Overseas)
	assert.Empty(t, f.Duties)
	assert.Equal(t, models.Unanswered, f.HasTattoo)
}

func TestMergeKeepsAbsentFields(t *testing.T) {
	f := NewForm()
	f.Name = "Maria"
	require.NoError(t, f.Merge([]byte(`{"height_cm":"160","skill_cooking":true,"smokes":"no"}`)))
	assert.Equal(t, "Maria", f.Name)
	assert.Equal(t, "160", f.HeightCM)
	assert.True(t, f.Cooking)
	assert.Equal(t, models.No, f.Smokes)
	assert.Equal(t, models.Unanswered, f.EatsPork)

	require.Error(t, f.Merge([]byte(`{"smokes":"maybe"}`)))
}

func TestMergeReplacesListsWhole(t *testing.T) {
	f := NewForm()
	f.Overseas = []Overseas{{Country: "Hong Kong", Duration: "2 years"}}
	d := Duty{WorkingCountry: "Singapore", Salary: "4500"}
	d.Driving = true
	d.Cooking = true
	f.Duties = []Duty{d}

	require.NoError(t, f.Merge([]byte(`{"overseas":[{"country":"Taiwan"}],"duties":[{"working_country":"Macau"}]}`)))
	assert.Equal(t, []Overseas{{Country: "Taiwan"}}, f.Overseas)
	require.Len(t, f.Duties, 1)
	assert.Equal(t, Duty{WorkingCountry: "Macau"}, f.Duties[0])

	require.NoError(t, f.Merge([]byte(`{"name":"Ana"}`)))
	assert.Len(t, f.Overseas, 1, "absent lists are kept")

	require.NoError(t, f.Merge([]byte(`{"overseas":null,"duties":[]}`)))
	assert.NotNil(t, f.Overseas)
	assert.Empty(t, f.Overseas)
	assert.Empty(t, f.Duties)

	require.Error(t, f.Merge([]byte(`[]`)))
}

func TestWorkerConversion(t *testing.T) {
	f := NewForm()
	f.Name = "Maria"
	f.HeightCM = "170cm"
	f.WeightKG = "abc"
	f.BirthOrder = "0"
	f.NumSons = " 2 kids"
	f.NumDaughters = ""
	f.HKMobile = ""
	f.AvailableSundays = models.Yes

	w := f.Worker("u1")
	assert.Equal(t, "u1", w.UserID)
	require.NotNil(t, w.HeightCM)
	assert.Equal(t, 170, *w.HeightCM)
	assert.Nil(t, w.WeightKG)
	assert.Nil(t, w.BirthOrder)
	assert.Equal(t, 2, w.NumSons)
	assert.Equal(t, 0, w.NumDaughters)
	assert.Nil(t, w.HKMobile)
	assert.Equal(t, models.Yes, w.AvailableSundays)
	assert.Equal(t, models.Unanswered, w.HasTattoo)
}

func TestChildRows(t *testing.T) {
	f := NewForm()
	f.Overseas = []Overseas{{Country: "Singapore", Duration: "2 years"}, {Country: ""}, {Country: "Taiwan"}}
	f.Duties = []Duty{{WorkingCountry: "Hong Kong"}, {}}

	ov := f.OverseasRows()
	require.Len(t, ov, 2)
	assert.Equal(t, "Singapore", ov[0].Country)
	assert.Equal(t, 0, ov[0].DisplayOrder)
	assert.Equal(t, "Taiwan", ov[1].Country)
	assert.Equal(t, 1, ov[1].DisplayOrder)
	assert.Nil(t, ov[1].Duration)

	duties := f.DutyRows()
	require.Len(t, duties, 2)
	assert.Equal(t, 1, duties[0].JobOrder)
	assert.Equal(t, 2, duties[1].JobOrder)
	assert.Nil(t, duties[1].WorkingCountry)
}

func TestFromStored(t *testing.T) {
	h := 155
	country := "Hong Kong"
	w := &models.Worker{
		Name:        "Ana",
		HeightCM:    &h,
		NumBrothers: 3,
		HadSurgery:  models.No,
	}
	w.Driving = true

	f := FromStored(w,
		[]models.OverseasExperience{{Country: "Dubai"}},
		[]models.PreviousDuty{{JobOrder: 1, WorkingCountry: &country}},
	)
	assert.Equal(t, "Ana", f.Name)
	assert.Equal(t, "Filipino", f.Nationality)
	assert.Equal(t, "F", f.Gender)
	assert.Equal(t, "155", f.HeightCM)
	assert.Equal(t, "", f.WeightKG)
	assert.Equal(t, "3", f.NumBrothers)
	assert.Equal(t, "0", f.NumSisters)
	assert.True(t, f.Driving)
	assert.Equal(t, models.No, f.HadSurgery)
	assert.Equal(t, models.Unanswered, f.Smokes)
	assert.Equal(t, []Overseas{{Country: "Dubai"}}, f.Overseas)
	require.Len(t, f.Duties, 1)
	assert.Equal(t, "Hong Kong", f.Duties[0].WorkingCountry)
}

func TestValidateForm(t *testing.T) {
	msgs, err := ValidateForm(t.Context(), []byte(`{"name":"Maria","lang_english":"good","smokes":"no"}`))
	require.NoError(t, err)
	assert.Empty(t, msgs)

	msgs, err = ValidateForm(t.Context(), []byte(`{"lang_english":"fluent","gender":"X","duties":"none"}`))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(msgs), 3)
}
