package valueobject

// NotificationType - тип события встречи, передаваемый в сервис уведомлений.
type NotificationType string

const (
	NotificationAppointmentInvitation   NotificationType = "appointment_invitation"
	NotificationAppointmentConfirmed    NotificationType = "appointment_confirmed"
	NotificationAppointmentDeclined     NotificationType = "appointment_declined"
	NotificationAppointmentCounterOffer NotificationType = "appointment_counter_offer"
	NotificationAppointmentCancelled    NotificationType = "appointment_cancelled"
	NotificationAppointmentCheckIn      NotificationType = "appointment_check_in"
	NotificationAppointmentStarted      NotificationType = "appointment_started"
	NotificationAppointmentCompleted    NotificationType = "appointment_completed"
	NotificationAppointmentExpired      NotificationType = "appointment_expired"
	NotificationAppointmentNoShow       NotificationType = "appointment_no_show"
)
