package schedule

import "github.com/healthbridge/telehealth-platform/internal/timeutil"

// Schedule is one weekly availability block for a doctor: a weekday, a
// 24-hour working window and the slot size the window is carved into.
type Schedule struct {
	ID           string              `json:"id" dynamodbav:"id"`
	DoctorID     string              `json:"doctorId" dynamodbav:"doctorId"`
	Day          string              `json:"day" dynamodbav:"day"`
	StartTime    string              `json:"startTime" dynamodbav:"startTime"`
	EndTime      string              `json:"endTime" dynamodbav:"endTime"`
	SlotDuration int                 `json:"slotDuration" dynamodbav:"slotDuration"`
	IsAvailable  bool                `json:"isAvailable" dynamodbav:"isAvailable"`
	IsDeleted    bool                `json:"isDeleted,omitempty" dynamodbav:"isDeleted,omitempty"`
	CreatedAt    timeutil.Timestamp  `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt    timeutil.Timestamp  `json:"updatedAt" dynamodbav:"updatedAt"`
	DeletedAt    *timeutil.Timestamp `json:"deletedAt,omitempty" dynamodbav:"deletedAt,omitempty"`
}

// dayOrder fixes the display ordering of weekly schedules, Monday first.
var dayOrder = map[string]int{
	"Monday":    0,
	"Tuesday":   1,
	"Wednesday": 2,
	"Thursday":  3,
	"Friday":    4,
	"Saturday":  5,
	"Sunday":    6,
}
