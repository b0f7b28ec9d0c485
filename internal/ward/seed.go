package ward

import (
	"context"
	"fmt"

	"wardcore/pkg/domain"
)

// SeedDemo admits a small roster of patients covering the interesting
// states: a shared room, a pediatric admission, a VIP with a blocked
// roommate bed, and an infectious patient.
func SeedDemo(ctx context.Context, svc *Service) error {
	admissions := []struct {
		patient domain.Patient
		bed     BedNumber
	}{
		{domain.MustPatient(10001, "Maria Garcia", 30, domain.GenderFemale, false, false), 201},
		{domain.MustPatient(10004, "Ana Martinez", 34, domain.GenderFemale, false, false), 202},
		{domain.MustPatient(10002, "John Lopez", 35, domain.GenderMale, false, false), 205},
		{domain.MustPatient(10003, "Carlos Ruiz", 10, domain.GenderMale, false, false), 501},
		{domain.MustPatient(10005, "Peter Sanchez", 35, domain.GenderMale, false, false), 209},
		{domain.MustPatient(10006, "Lucia Fernandez", 52, domain.GenderFemale, false, false), 401},
	}
	for _, a := range admissions {
		if _, err := svc.Admit(ctx, a.patient, a.bed); err != nil {
			return fmt.Errorf("seed admit %d to bed %d: %w", a.patient.ClinicalRecord, a.bed, err)
		}
	}
	if _, err := svc.SetVIP(ctx, 10002, true); err != nil {
		return fmt.Errorf("seed vip %d: %w", 10002, err)
	}
	if _, err := svc.MarkInfected(ctx, 10006); err != nil {
		return fmt.Errorf("seed infect %d: %w", 10006, err)
	}
	return nil
}
