package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// SendBookingReminders mails every user who holds a confirmed booking that
// starts within the next day.
func (r *Runner) SendBookingReminders() {
	r.runWithRecovery("SendBookingReminders", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		query := `
			SELECT b.id, b.resolved_time, u.email, u.username, s.title
			FROM bookings b
			JOIN wallets w ON b.wallet_id = w.id
			JOIN users u ON w.user_id = u.id
			JOIN slot_schedules sc ON b.schedule_id = sc.id
			JOIN slots s ON sc.slot_id = s.id
			WHERE b.status = 'confirmed'
			  AND b.resolved_time >= NOW()
			  AND b.resolved_time < NOW() + INTERVAL '1 day'
		`

		rows, err := r.db.Query(ctx, query)
		if err != nil {
			r.log.Error("Failed to query upcoming bookings", zap.Error(err))
			return
		}
		defer rows.Close()

		count := 0
		for rows.Next() {
			var (
				bookingID    string
				resolvedTime time.Time
				email        string
				username     string
				slotTitle    string
			)

			if err := rows.Scan(&bookingID, &resolvedTime, &email, &username, &slotTitle); err != nil {
				r.log.Error("Failed to scan upcoming booking", zap.Error(err))
				continue
			}

			subject := fmt.Sprintf("Reminder: %s at %s", slotTitle, resolvedTime.Format("15:04"))
			body := fmt.Sprintf(`Hello %s,

This is a reminder for your booking of "%s" on %s.

Booking ID: %s`, username, slotTitle, resolvedTime.Format("Monday, 2 January 2006 at 15:04"), bookingID)

			if err := r.mail.Send(email, subject, body); err != nil {
				r.log.Error("Failed to send booking reminder",
					zap.String("booking_id", bookingID),
					zap.String("email", email),
					zap.Error(err),
				)
				continue
			}

			count++
		}

		if err := rows.Err(); err != nil {
			r.log.Error("Failed to iterate upcoming bookings", zap.Error(err))
			return
		}

		r.log.Info("Booking reminders sent", zap.Int("count", count))
	})
}

// CleanExpiredSessions drops session rows past their expiry.
func (r *Runner) CleanExpiredSessions() {
	r.runWithRecovery("CleanExpiredSessions", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if err := r.repo.Session.CleanExpiredSessions(ctx); err != nil {
			r.log.Error("Failed to clean expired sessions", zap.Error(err))
		}
	})
}
