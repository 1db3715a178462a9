package referral

import (
	"fmt"
	"strings"

	"github.com/wolfman30/referral-service/internal/notify"
)

func specialistMessage(req Request, patientID, patientName string, slot Slot, apptID string) notify.EmailMessage {
	subject := fmt.Sprintf("Specialist Referral: %s", patientName)
	if req.Urgent {
		subject = fmt.Sprintf("URGENT Specialist Referral: %s", patientName)
	}

	urgentLine := ""
	if req.Urgent {
		urgentLine = "\nThis referral is marked URGENT."
	}
	durationLine := ""
	if req.Duration != nil {
		durationLine = fmt.Sprintf("\nSymptom duration: %s %s", trimFloat(req.Duration.Value), req.Duration.Unit)
	}

	body := fmt.Sprintf(`A specialist referral has been booked for your review.

Patient: %s (ID: %s)
Appointment: %s at %s (ref %s)
Referring doctor: %s
Symptoms: %s
Treatment details: %s%s%s

— %s`,
		patientName, patientID, slot.Date, slot.Time, apptID,
		req.ReferringDoctor, req.Symptoms, req.TreatmentDetails,
		durationLine, urgentLine, req.ReferringDoctor)

	html := fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px;">
<h2>%s</h2>
<table style="border-collapse: collapse; margin: 20px 0;">
  %s%s%s%s%s%s
</table>
%s
<p style="color: #6b7280; font-size: 12px; margin-top: 20px;">— %s</p>
</div>`,
		htmlEscape(subject),
		htmlRow("Patient", fmt.Sprintf("%s (ID: %s)", patientName, patientID)),
		htmlRow("Appointment", fmt.Sprintf("%s at %s (ref %s)", slot.Date, slot.Time, apptID)),
		htmlRow("Referring doctor", req.ReferringDoctor),
		htmlRow("Symptoms", req.Symptoms),
		htmlRow("Treatment details", req.TreatmentDetails),
		htmlDurationRow(req.Duration),
		htmlUrgentCallout(req.Urgent),
		htmlEscape(req.ReferringDoctor))

	return notify.EmailMessage{
		To:      req.SpecialistEmail,
		Subject: subject,
		Body:    body,
		HTML:    html,
	}
}

func patientMessage(req Request, patientEmail, patientName string, slot Slot, apptID string) notify.EmailMessage {
	subject := "Your Specialist Appointment Confirmation"

	body := fmt.Sprintf(`Hello %s,

Your specialist referral has been booked.

Appointment: %s at %s
Reference: %s
Referred by: %s

If this time does not work for you, please contact the practice to
reschedule.

— %s`,
		patientName, slot.Date, slot.Time, apptID, req.ReferringDoctor, req.ReferringDoctor)

	html := fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px;">
<h2>Your Specialist Appointment</h2>
<p>Hello %s, your specialist referral has been booked.</p>
<table style="border-collapse: collapse; margin: 20px 0;">
  %s%s%s
</table>
<p>If this time does not work for you, please contact the practice to reschedule.</p>
<p style="color: #6b7280; font-size: 12px; margin-top: 20px;">— %s</p>
</div>`,
		htmlEscape(patientName),
		htmlRow("Appointment", fmt.Sprintf("%s at %s", slot.Date, slot.Time)),
		htmlRow("Reference", apptID),
		htmlRow("Referred by", req.ReferringDoctor),
		htmlEscape(req.ReferringDoctor))

	return notify.EmailMessage{
		To:      patientEmail,
		ToName:  patientName,
		Subject: subject,
		Body:    body,
		HTML:    html,
	}
}

func htmlRow(label, value string) string {
	if value == "" {
		return ""
	}
	return fmt.Sprintf(`<tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>%s:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>`,
		htmlEscape(label), htmlEscape(value))
}

func htmlDurationRow(d *Duration) string {
	if d == nil {
		return ""
	}
	return htmlRow("Symptom duration", fmt.Sprintf("%s %s", trimFloat(d.Value), d.Unit))
}

func htmlUrgentCallout(urgent bool) string {
	if !urgent {
		return ""
	}
	return `<p style="background: #fef2f2; padding: 12px; border-radius: 8px; border-left: 4px solid #ef4444;"><strong>URGENT</strong> — please prioritize this referral.</p>`
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
