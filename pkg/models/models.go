package models

// Domain models matching the database schema in db/migrations/0001_init.sql

type WorkerStatus string

const (
	StatusPending    WorkerStatus = "pending"
	StatusAvailable  WorkerStatus = "available"
	StatusProcessing WorkerStatus = "processing"
	StatusHired      WorkerStatus = "hired"
)

// ListedStatuses are the statuses employers can see in the worker directory.
var ListedStatuses = []WorkerStatus{StatusAvailable, StatusProcessing}

type Role string

const (
	RoleEmployer Role = "employer"
	RoleWorker   Role = "worker"
)

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Districts accepted for an employer profile.
var Districts = []string{"香港島", "九龍", "新界", "離島"}

type User struct {
	ID               string  `json:"id" db:"id"`
	Email            *string `json:"email,omitempty" db:"email"`
	PasswordHash     string  `json:"-" db:"password_hash"`
	Phone            *string `json:"phone,omitempty" db:"phone"`
	PhoneConfirmedAt *int64  `json:"phone_confirmed_at,omitempty" db:"phone_confirmed_at"`
	Provider         string  `json:"provider" db:"provider"`
	Created          int64   `json:"created_at" db:"created_at"`
	Roles            []Role  `json:"roles,omitempty" db:"-"`
}

type Employer struct {
	ID          string  `json:"id" db:"id"`
	UserID      string  `json:"user_id" db:"user_id"`
	ContactName string  `json:"contact_name" db:"contact_name" validate:"required"`
	CompanyName *string `json:"company_name" db:"company_name"`
	Phone       *string `json:"phone" db:"phone"`
	District    *string `json:"district" db:"district"`
	Created     int64   `json:"created_at" db:"created_at"`
}

type Worker struct {
	ID            string  `json:"id" db:"id"`
	UserID        string  `json:"user_id" db:"user_id"`
	PhotoURL      *string `json:"photo_url" db:"photo_url"`
	Name          string  `json:"name" db:"name"`
	Nationality   *string `json:"nationality" db:"nationality"`
	Gender        *string `json:"gender" db:"gender"`
	DateOfBirth   *string `json:"date_of_birth" db:"date_of_birth"`
	MaritalStatus *string `json:"marital_status" db:"marital_status"`
	Education     *string `json:"education" db:"education"`
	Religion      *string `json:"religion" db:"religion"`
	HeightCM      *int    `json:"height_cm" db:"height_cm"`
	WeightKG      *int    `json:"weight_kg" db:"weight_kg"`
	BirthOrder    *int    `json:"birth_order" db:"birth_order"`
	NumBrothers   int     `json:"num_brothers" db:"num_brothers"`
	NumSisters    int     `json:"num_sisters" db:"num_sisters"`
	NumSons       int     `json:"num_sons" db:"num_sons"`
	SonAges       *string `json:"son_ages" db:"son_ages"`
	NumDaughters  int     `json:"num_daughters" db:"num_daughters"`
	DaughterAges  *string `json:"daughter_ages" db:"daughter_ages"`

	HKID            *string `json:"hkid" db:"hkid"`
	HKMobile        *string `json:"hk_mobile" db:"hk_mobile"`
	ContractEndDate *string `json:"contract_end_date" db:"contract_end_date"`

	Skills

	LangMandarin  *string `json:"lang_mandarin" db:"lang_mandarin"`
	LangCantonese *string `json:"lang_cantonese" db:"lang_cantonese"`
	LangEnglish   *string `json:"lang_english" db:"lang_english"`

	EatsPork         YesNo   `json:"eats_pork" db:"eats_pork"`
	AvailableSundays YesNo   `json:"available_sundays" db:"available_sundays"`
	CanShareRoom     YesNo   `json:"can_share_room" db:"can_share_room"`
	ShareRoomNotes   *string `json:"share_room_notes" db:"share_room_notes"`
	HasTattoo        YesNo   `json:"has_tattoo" db:"has_tattoo"`
	Smokes           YesNo   `json:"smokes" db:"smokes"`
	AfraidOfPets     YesNo   `json:"afraid_of_pets" db:"afraid_of_pets"`
	HadSurgery       YesNo   `json:"had_surgery" db:"had_surgery"`
	SurgeryDetails   *string `json:"surgery_details" db:"surgery_details"`
	HasAllergies     YesNo   `json:"has_allergies" db:"has_allergies"`
	AllergyDetails   *string `json:"allergy_details" db:"allergy_details"`

	Remark  *string      `json:"remark" db:"remark"`
	Status  WorkerStatus `json:"status" db:"status"`
	Created int64        `json:"created_at" db:"created_at"`
	Updated int64        `json:"updated_at" db:"updated_at"`
}

type OverseasExperience struct {
	ID           string  `json:"id" db:"id"`
	WorkerID     string  `json:"worker_id" db:"worker_id"`
	Country      string  `json:"country" db:"country"`
	Duration     *string `json:"duration" db:"duration"`
	DisplayOrder int     `json:"display_order" db:"display_order"`
}

type PreviousDuty struct {
	ID                 string  `json:"id" db:"id"`
	WorkerID           string  `json:"worker_id" db:"worker_id"`
	JobOrder           int     `json:"job_order" db:"job_order"`
	WorkingCountry     *string `json:"working_country" db:"working_country"`
	DurationFrom       *string `json:"duration_from" db:"duration_from"`
	DurationTo         *string `json:"duration_to" db:"duration_to"`
	Salary             *string `json:"salary" db:"salary"`
	ReasonToLeave      *string `json:"reason_to_leave" db:"reason_to_leave"`
	EmployerFamilyInfo *string `json:"employer_family_info" db:"employer_family_info"`

	Skills

	BabyAgeRange     *string `json:"baby_age_range" db:"baby_age_range"`
	ToddlerAgeRange  *string `json:"toddler_age_range" db:"toddler_age_range"`
	ChildrenAgeRange *string `json:"children_age_range" db:"children_age_range"`
}

type WorkerMedia struct {
	ID          string    `json:"id" db:"id"`
	WorkerID    string    `json:"worker_id" db:"worker_id"`
	URL         string    `json:"url" db:"url"`
	StoragePath string    `json:"storage_path" db:"storage_path"`
	Type        MediaType `json:"type" db:"type"`
	Caption     *string   `json:"caption" db:"caption"`
	Created     int64     `json:"created_at" db:"created_at"`
}

type Inquiry struct {
	ID         string  `json:"id" db:"id"`
	EmployerID string  `json:"employer_id" db:"employer_id"`
	WorkerID   string  `json:"worker_id" db:"worker_id"`
	Message    *string `json:"message" db:"message"`
	Created    int64   `json:"created_at" db:"created_at"`
}

// FeedItem is the read-model row returned by the feed query, already resolved
// against the viewing user.
type FeedItem struct {
	ID          string    `json:"id"`
	WorkerID    string    `json:"worker_id"`
	URL         string    `json:"url"`
	Type        MediaType `json:"type"`
	Caption     *string   `json:"caption"`
	Created     int64     `json:"created_at"`
	WorkerName  string    `json:"worker_name"`
	Nationality *string   `json:"nationality"`
	PhotoURL    *string   `json:"photo_url"`
	LikeCount   int64     `json:"like_count"`
	Liked       bool      `json:"liked"`
	Bookmarked  bool      `json:"bookmarked"`
}
