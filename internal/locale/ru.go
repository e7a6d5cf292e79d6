// Package locale maps the internal status kinds to the Russian display
// strings the existing reports and forms bind to. The core keeps statuses
// language-neutral; only the presentation boundary uses these.
package locale

import "github.com/dkravt/eventops-payments/internal/model"

var paymentStatusRU = map[model.PaymentStatus]string{
	model.PaymentStatusPlanned: "Запланировано",
	model.PaymentStatusPaid:    "Выплачено",
	model.PaymentStatusOverdue: "Просрочено",
}

var workReportStatusRU = map[model.WorkReportStatus]string{
	model.WorkReportStatusDraft:     "Черновик",
	model.WorkReportStatusSubmitted: "Отправлен",
	model.WorkReportStatusApproved:  "Утвержден",
	model.WorkReportStatusPaid:      "Оплачен",
}

var estimateStatusRU = map[model.EstimateStatus]string{
	model.EstimateStatusDraft:    "Черновик",
	model.EstimateStatusSent:     "Отправлена",
	model.EstimateStatusApproved: "Утверждена",
	model.EstimateStatusRejected: "Отклонена",
}

func PaymentStatus(s model.PaymentStatus) string {
	if label, ok := paymentStatusRU[s]; ok {
		return label
	}
	return string(s)
}

func WorkReportStatus(s model.WorkReportStatus) string {
	if label, ok := workReportStatusRU[s]; ok {
		return label
	}
	return string(s)
}

func EstimateStatus(s model.EstimateStatus) string {
	if label, ok := estimateStatusRU[s]; ok {
		return label
	}
	return string(s)
}

// ParsePaymentStatus resolves a display string back to its internal kind,
// accepting the neutral value as well. Reports imported from the old system
// still carry the localized strings.
func ParsePaymentStatus(raw string) (model.PaymentStatus, bool) {
	for status, label := range paymentStatusRU {
		if raw == label || raw == string(status) {
			return status, true
		}
	}
	return "", false
}
