package events

import "strconv"

const (
	StreamName   = "CMMS_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

func SubjectWorkOrderRecommended(workOrderID int64) string {
	return "cmms.workorder." + strconv.FormatInt(workOrderID, 10) + ".recommended"
}

func SubjectWorkOrderAssigned(workOrderID int64) string {
	return "cmms.workorder." + strconv.FormatInt(workOrderID, 10) + ".assigned"
}

func SubjectWorkOrderCompleted(workOrderID int64) string {
	return "cmms.workorder." + strconv.FormatInt(workOrderID, 10) + ".completed"
}

func SubjectIntegrationSynced(integration string) string {
	return "cmms.integration." + integration + ".synced"
}
