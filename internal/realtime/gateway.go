package realtime

import (
	"context"
	"fmt"

	"agrilink-backend/internal/model"
)

// Gateway is the delivery surface the rest of the system calls. It hides
// presence, room and router wiring behind typed push operations. The raw
// push wrappers are best-effort; callers needing guaranteed delivery use
// Notify, which goes through the persistence bridge.
type Gateway struct {
	router *Router
	bridge *Bridge
}

// NewGateway creates a gateway over the router and bridge.
func NewGateway(router *Router, bridge *Bridge) *Gateway {
	return &Gateway{router: router, bridge: bridge}
}

// SendToUser pushes a typed event directly to one user. The return value
// reports whether the recipient was online and a push was attempted.
func (g *Gateway) SendToUser(userID uint, ev Event) bool {
	return g.router.ToUser(userID, ev)
}

// SendDiagnosisResult pushes an AI crop diagnosis result.
func (g *Gateway) SendDiagnosisResult(userID uint, p model.DiagnosisResultPayload) bool {
	return g.SendToUser(userID, Event{Type: EvtDiagnosisResult, Data: p})
}

// SendWeatherAlert pushes a weather warning to one user.
func (g *Gateway) SendWeatherAlert(userID uint, p model.WeatherAlertPayload) bool {
	return g.SendToUser(userID, Event{Type: EvtWeatherAlert, Data: p})
}

// SendMarketUpdate pushes a commodity price update.
func (g *Gateway) SendMarketUpdate(userID uint, p model.MarketPricePayload) bool {
	return g.SendToUser(userID, Event{Type: EvtMarketUpdate, Data: p})
}

// SendCalendarReminder pushes a calendar reminder.
func (g *Gateway) SendCalendarReminder(userID uint, p model.ReminderPayload) bool {
	return g.SendToUser(userID, Event{Type: EvtCalendarReminder, Data: p})
}

// SendLearningProgress pushes a learning progress update.
func (g *Gateway) SendLearningProgress(userID uint, p model.LearningProgressPayload) bool {
	return g.SendToUser(userID, Event{Type: EvtLearningProgress, Data: p})
}

// BroadcastSystemNotification pushes to every connected session. No
// persistence; users connecting later never see it.
func (g *Gateway) BroadcastSystemNotification(data any) {
	g.router.ToAll(Event{Type: EvtSystemNotice, Data: data})
}

// BroadcastWeatherAlert pushes a weather warning to everyone connected.
func (g *Gateway) BroadcastWeatherAlert(p model.WeatherAlertPayload) {
	g.router.ToAll(Event{Type: EvtWeatherAlert, Data: p})
}

// SendToCommunity pushes to every member of a community room. No persistence.
func (g *Gateway) SendToCommunity(communityID uint, data any) {
	g.router.ToRoom(CommunityRoom(communityID), Event{Type: EvtCommunityNotice, Data: data}, nil)
}

// Notify records a durable notification and attempts a realtime push.
// See Bridge.Notify for the delivery contract.
func (g *Gateway) Notify(ctx context.Context, userID uint, typ model.NotificationType, title, message string, payload any) (*model.Notification, error) {
	return g.bridge.Notify(ctx, userID, typ, title, message, payload)
}

// CommunityRoom names the broadcast room for a community discussion group.
func CommunityRoom(communityID uint) string {
	return fmt.Sprintf("community_%d", communityID)
}
