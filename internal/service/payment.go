package service

import "github.com/vagnerlopes/whatsapp-sales-agent/environments"

// PaymentService selects one of three fixed checkout links by
// objection state. The links are immutable configuration.
type PaymentService struct {
	linkNormal     string
	linkDiscount40 string
	linkDiscount50 string
}

func NewPaymentService(cfg environments.PaymentConfig) *PaymentService {
	return &PaymentService{
		linkNormal:     cfg.LinkNormal,
		linkDiscount40: cfg.LinkDiscount40,
		linkDiscount50: cfg.LinkDiscount50,
	}
}

// Link returns the checkout link for the given objection state. The
// automatic pipeline only ever sets priceObjection; maxDiscount is a
// manual escalation knob with no automatic trigger.
func (s *PaymentService) Link(priceObjection, maxDiscount bool) string {
	if priceObjection && maxDiscount {
		return s.linkDiscount50
	}
	if priceObjection {
		return s.linkDiscount40
	}
	return s.linkNormal
}
