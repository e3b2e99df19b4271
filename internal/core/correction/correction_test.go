package correction

import (
	"encoding/json"
	"testing"
	"time"

	"attendance.service/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func baseDay() model.AttendanceDay {
	in := time.Date(2025, 12, 3, 0, 0, 0, 0, time.UTC)
	out := time.Date(2025, 12, 3, 9, 0, 0, 0, time.UTC)
	return model.AttendanceDay{
		UserID:       "u1",
		WorkDate:     "2025-12-03",
		InAt:         &in,
		OutAt:        &out,
		BreakMinutes: 60,
		Location:     strPtr("Head office"),
		UpdatedAt:    time.Date(2025, 12, 4, 1, 0, 0, 0, time.UTC),
	}
}

func decode(t *testing.T, s string) Payload {
	t.Helper()
	var p Payload
	require.NoError(t, json.Unmarshal([]byte(s), &p))
	return p
}

func TestApplyEmptyPayloadIsNoop(t *testing.T) {
	base := baseDay()
	p := decode(t, `{"in_at_local": "", "out_at_local": "  ", "break_minutes": null}`)

	assert.True(t, p.IsEmpty())

	got, err := Apply(p, base)
	require.NoError(t, err)
	assert.Equal(t, base, got)
}

func TestApplyOnlyChangesPresentFields(t *testing.T) {
	base := baseDay()
	p := decode(t, `{"in_at_local": "2025-12-03T08:30"}`)

	got, err := Apply(p, base)
	require.NoError(t, err)

	require.NotNil(t, got.InAt)
	assert.True(t, got.InAt.Equal(time.Date(2025, 12, 2, 23, 30, 0, 0, time.UTC)))
	assert.Equal(t, base.OutAt, got.OutAt)
	assert.Equal(t, base.BreakMinutes, got.BreakMinutes)
	assert.Equal(t, base.Location, got.Location)
}

func TestApplyLocationPresentVersusAbsent(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    *string
	}{
		{name: "absent keeps base", payload: `{"break_minutes": 30}`, want: strPtr("Head office")},
		{name: "null clears", payload: `{"location": null}`, want: nil},
		{name: "blank clears", payload: `{"location": "  "}`, want: nil},
		{name: "value replaces", payload: `{"location": " Client site "}`, want: strPtr("Client site")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(decode(t, tt.payload), baseDay())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Location)
		})
	}
}

func TestApplyBreakMinutes(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int
	}{
		{name: "number", payload: `{"break_minutes": 45}`, want: 45},
		{name: "numeric string", payload: `{"break_minutes": "30"}`, want: 30},
		{name: "zero", payload: `{"break_minutes": 0}`, want: 0},
		{name: "upper bound", payload: `{"break_minutes": 1440}`, want: 1440},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(decode(t, tt.payload), baseDay())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.BreakMinutes)
		})
	}
}

func TestUnmarshalRejectsOutOfRangeBreak(t *testing.T) {
	for _, payload := range []string{
		`{"break_minutes": 1500}`,
		`{"break_minutes": -1}`,
		`{"break_minutes": "-30"}`,
		`{"break_minutes": 1e300}`,
	} {
		t.Run(payload, func(t *testing.T) {
			var p Payload
			err := json.Unmarshal([]byte(payload), &p)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "break_minutes", ve.Field)
			assert.Equal(t, "must be between 0 and 1440", ve.Reason)
		})
	}
}

func TestApplyRejectsOutOfRangeBreak(t *testing.T) {
	_, err := Apply(Payload{BreakMinutes: Set(1500)}, baseDay())
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "break_minutes", ve.Field)
}

func TestUnmarshalRejectsNonNumericBreak(t *testing.T) {
	var p Payload
	err := json.Unmarshal([]byte(`{"break_minutes": "lunch"}`), &p)
	assert.True(t, IsValidation(err))

	err = json.Unmarshal([]byte(`{"break_minutes": 12.5}`), &p)
	assert.True(t, IsValidation(err))
}

func TestApplyRejectsMalformedLocalTime(t *testing.T) {
	_, err := Apply(decode(t, `{"out_at_local": "18:00"}`), baseDay())
	assert.True(t, IsValidation(err))
}

func TestApplyIsIdempotent(t *testing.T) {
	p := decode(t, `{"in_at_local": "2025-12-03T09:15", "out_at_local": "2025-12-03T18:40:00", "break_minutes": "50", "location": null}`)

	once, err := Apply(p, baseDay())
	require.NoError(t, err)
	twice, err := Apply(p, once)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestApplyOnMissingRowUsesDefaults(t *testing.T) {
	got, err := Apply(decode(t, `{"out_at_local": "2025-12-03T18:00"}`), NewDay("u1", "2025-12-03"))
	require.NoError(t, err)

	assert.Nil(t, got.InAt)
	require.NotNil(t, got.OutAt)
	assert.Zero(t, got.BreakMinutes)
	assert.Nil(t, got.Location)
	assert.Equal(t, "2025-12-03", got.WorkDate)
}

func TestPayloadRoundTripKeepsClearedLocation(t *testing.T) {
	p := decode(t, `{"location": null, "break_minutes": 15}`)

	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"location": null, "break_minutes": 15}`, string(b))

	back := decode(t, string(b))
	assert.Equal(t, p, back)
}

func TestPayloadSummary(t *testing.T) {
	assert.Equal(t, "(no change)", Payload{}.Summary())
	p := decode(t, `{"in_at_local": "2025-12-03T09:00", "break_minutes": 45, "location": ""}`)
	assert.Equal(t, "in 09:00 / break 45 min / location (empty)", p.Summary())
}

func TestDecide(t *testing.T) {
	now := time.Date(2025, 12, 5, 3, 0, 0, 0, time.UTC)

	t.Run("approve pending", func(t *testing.T) {
		r := &Request{Status: model.RequestPending}
		require.NoError(t, Decide(r, model.RequestApproved, "  ok  ", now))
		assert.Equal(t, model.RequestApproved, r.Status)
		require.NotNil(t, r.AdminNote)
		assert.Equal(t, "ok", *r.AdminNote)
		assert.Equal(t, &now, r.DecidedAt)
	})

	t.Run("blank note stored as nil", func(t *testing.T) {
		r := &Request{Status: model.RequestPending}
		require.NoError(t, Decide(r, model.RequestRejected, " ", now))
		assert.Nil(t, r.AdminNote)
	})

	t.Run("second approval refused", func(t *testing.T) {
		decided := now.Add(-time.Hour)
		r := &Request{Status: model.RequestApproved, DecidedAt: &decided}
		err := Decide(r, model.RequestApproved, "again", now)
		assert.ErrorIs(t, err, ErrAlreadyDecided)
		assert.Equal(t, &decided, r.DecidedAt)
		assert.Nil(t, r.AdminNote)
	})

	t.Run("rejected cannot be approved", func(t *testing.T) {
		r := &Request{Status: model.RequestRejected}
		assert.ErrorIs(t, Decide(r, model.RequestApproved, "", now), ErrAlreadyDecided)
	})

	t.Run("pending is not a decision", func(t *testing.T) {
		r := &Request{Status: model.RequestPending}
		assert.ErrorIs(t, Decide(r, model.RequestPending, "", now), ErrInvalidDecision)
	})
}

func TestReasonLabel(t *testing.T) {
	assert.Equal(t, "forgot to punch", ReasonForgotPunch.Label())
	assert.Equal(t, "other", ReasonCode(" 5 ").Label())
	assert.Equal(t, "came in late", ReasonCode("came in late").Label())
	assert.Equal(t, "-", ReasonCode("").Label())
}
