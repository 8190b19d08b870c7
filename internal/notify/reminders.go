package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cory321/threadfolio/internal/format"
	"github.com/cory321/threadfolio/internal/models"
	"github.com/cory321/threadfolio/internal/store"
)

// reminderLead is how long before the appointment start the SMS fires.
const reminderLead = 24 * time.Hour

// ReminderMessage is the queue payload for a scheduled appointment
// reminder.
type ReminderMessage struct {
	AppointmentID int `json:"appointment_id"`
	UserID        int `json:"user_id"`
}

// ReminderQueue schedules appointment reminders through RabbitMQ using
// a delayed exchange (x-delay header). A nil *ReminderQueue is valid
// and means "no broker": callers fall back to sending inline.
type ReminderQueue struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queueName string
}

func NewReminderQueue(amqpURL, queueName string) (*ReminderQueue, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	rq := &ReminderQueue{conn: conn, channel: ch, queueName: queueName}
	if err := rq.setup(); err != nil {
		rq.Close()
		return nil, err
	}
	return rq, nil
}

// setup declares the delayed exchange and the durable reminder queue.
// The delayed-message exchange needs the RabbitMQ delay plugin.
func (rq *ReminderQueue) setup() error {
	err := rq.channel.ExchangeDeclare(
		rq.queueName+"_exchange",
		"x-delayed-message",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		amqp.Table{"x-delayed-type": "direct"},
	)
	if err != nil {
		return fmt.Errorf("declare delayed exchange: %w", err)
	}

	_, err = rq.channel.QueueDeclare(
		rq.queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := rq.channel.QueueBind(rq.queueName, "", rq.queueName+"_exchange", false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func (rq *ReminderQueue) Close() {
	if rq == nil {
		return
	}
	if rq.channel != nil {
		rq.channel.Close()
	}
	if rq.conn != nil {
		rq.conn.Close()
	}
}

// Schedule publishes a reminder that fires reminderLead before the
// appointment starts. Appointments closer than the lead get a zero
// delay and fire immediately.
func (rq *ReminderQueue) Schedule(appt *models.Appointment) error {
	if rq == nil {
		return fmt.Errorf("reminder queue not configured")
	}

	body, err := json.Marshal(ReminderMessage{AppointmentID: appt.ID, UserID: appt.UserID})
	if err != nil {
		return err
	}

	delay := time.Until(appt.StartsAt().Add(-reminderLead))
	if delay < 0 {
		delay = 0
	}

	msg := amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		ContentType:  "application/json",
		Body:         body,
		Headers: amqp.Table{
			"x-delay": delay.Milliseconds(),
		},
	}

	return rq.channel.Publish(
		rq.queueName+"_exchange",
		"",
		false, // mandatory
		false, // immediate
		msg,
	)
}

// Reminder builds the SMS body for an appointment.
func Reminder(businessName string, appt *models.Appointment) string {
	when := format.Date(appt.Date) + " at " + appt.StartTime
	if businessName == "" {
		businessName = "your seamstress"
	}
	msg := fmt.Sprintf("Reminder: you have an appointment with %s on %s", businessName, when)
	if appt.Location != "" {
		msg += " (" + appt.Location + ")"
	}
	return msg + "."
}

// StartReminderConsumer consumes reminder messages until the channel
// closes. Each message re-reads the appointment: cancelled or already
// reminded appointments are skipped, everything else gets the SMS and
// the reminder_sent flag.
func StartReminderConsumer(rq *ReminderQueue, db *store.Store, sms *SMSClient) error {
	msgs, err := rq.channel.Consume(
		rq.queueName,
		"threadfolio-reminders", // consumer tag
		false,                   // auto-ack
		false,                   // exclusive
		false,                   // no-local
		false,                   // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register reminder consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			processReminder(msg, db, sms)
		}
		slog.Info("Reminder consumer channel closed")
	}()

	return nil
}

func processReminder(msg amqp.Delivery, db *store.Store, sms *SMSClient) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Recovered from panic in reminder processing", "panic", r)
		}
	}()

	var rm ReminderMessage
	if err := json.Unmarshal(msg.Body, &rm); err != nil {
		slog.Error("Invalid reminder message", "body", string(msg.Body), "error", err)
		msg.Nack(false, false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	appt, err := db.GetAppointmentByID(ctx, rm.UserID, rm.AppointmentID)
	if err != nil {
		slog.Error("Failed to load appointment for reminder", "appointment_id", rm.AppointmentID, "error", err)
		msg.Nack(false, true) // requeue, the DB may be back shortly
		return
	}
	if appt == nil || appt.Status == models.AppointmentStatusCancelled || appt.ReminderSent {
		slog.Info("Skipping reminder", "appointment_id", rm.AppointmentID)
		msg.Ack(false)
		return
	}

	user, err := db.GetUserByID(ctx, rm.UserID)
	if err != nil || user == nil {
		slog.Error("Failed to load user for reminder", "user_id", rm.UserID, "error", err)
		msg.Nack(false, false)
		return
	}

	if err := sms.Send(ctx, appt.ClientPhone, Reminder(user.BusinessName, appt)); err != nil {
		slog.Error("Failed to send reminder SMS", "appointment_id", appt.ID, "error", err)
		msg.Nack(false, false)
		return
	}

	if err := db.MarkReminderSent(ctx, appt.ID); err != nil {
		slog.Error("Failed to mark reminder sent", "appointment_id", appt.ID, "error", err)
	}
	msg.Ack(false)
}
