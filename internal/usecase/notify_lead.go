package usecase

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/expo-leads/internal/entity"
	"github.com/xavierca1/expo-leads/internal/infra/mail"
	"github.com/xavierca1/expo-leads/internal/infra/storage"
)

const (
	defaultSendTimeout  = 20 * time.Second
	fallbackProductName = "our solutions"
	brandLogoCID        = "brand-logo"
)

type NotificationSettings struct {
	Cc      []string
	ReplyTo string

	// BrandAssetRef and StandardCollateralRef are resolved through Assets.
	BrandAssetRef         string
	StandardCollateralRef string
	Signature             mail.Signature
	SendTimeout           time.Duration
}

// NotificationDispatcher sends the post-visit follow-up. It never returns an
// error: every failure ends up in the returned outcome.
type NotificationDispatcher struct {
	Mailer     Mailer
	Collateral FileReader
	Assets     FileReader
	Settings   NotificationSettings
	Logger     *zap.Logger
}

func NewNotificationDispatcher(mailer Mailer, collateral, assets FileReader, settings NotificationSettings, logger *zap.Logger) *NotificationDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.SendTimeout <= 0 {
		settings.SendTimeout = defaultSendTimeout
	}
	return &NotificationDispatcher{
		Mailer:     mailer,
		Collateral: collateral,
		Assets:     assets,
		Settings:   settings,
		Logger:     logger,
	}
}

func (d *NotificationDispatcher) Notify(ctx context.Context, lead *entity.Lead, exhibitionName string, products []*entity.Product) (outcome entity.NotificationOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = entity.NotificationFailed(fmt.Errorf("notification aborted: %v", r))
			d.Logger.Error("follow-up email panicked", zap.Any("panic", r))
		}
	}()

	if lead == nil {
		return entity.NotificationFailed(errors.New("no lead to notify"))
	}

	msg, err := d.compose(ctx, lead, exhibitionName, products)
	if err != nil {
		d.Logger.Error("follow-up email not composed", zap.Int64("lead_id", lead.ID), zap.Error(err))
		return entity.NotificationFailed(err)
	}

	if err := d.send(ctx, msg); err != nil {
		d.Logger.Error("follow-up email failed",
			zap.Int64("lead_id", lead.ID),
			zap.String("to", lead.Email),
			zap.Error(err),
		)
		return entity.NotificationFailed(err)
	}

	d.Logger.Info("follow-up email sent",
		zap.Int64("lead_id", lead.ID),
		zap.String("to", lead.Email),
		zap.Int("attachments", len(msg.Attachments)),
	)
	return entity.NotificationSent()
}

func (d *NotificationDispatcher) compose(ctx context.Context, lead *entity.Lead, exhibitionName string, products []*entity.Product) (*mail.Message, error) {
	names := productNames(products)

	msg := &mail.Message{
		To:      []string{lead.Email},
		Cc:      d.Settings.Cc,
		ReplyTo: d.Settings.ReplyTo,
		Subject: fmt.Sprintf("Thank You for Your Interest in %s Solutions", names),
	}

	data := mail.FollowUpEmailData{
		VisitorName:    lead.Name,
		ExhibitionName: exhibitionName,
		ProductNames:   names,
		Signature:      d.Settings.Signature,
	}

	if logo, ok := d.readOptional(ctx, d.Assets, d.Settings.BrandAssetRef, lead.ID); ok {
		data.LogoCID = brandLogoCID
		msg.Attachments = append(msg.Attachments, mail.Attachment{
			Filename:  path.Base(d.Settings.BrandAssetRef),
			Data:      logo,
			Inline:    true,
			ContentID: brandLogoCID,
		})
	}

	if brochure, ok := d.readOptional(ctx, d.Assets, d.Settings.StandardCollateralRef, lead.ID); ok {
		msg.Attachments = append(msg.Attachments, mail.Attachment{
			Filename: path.Base(d.Settings.StandardCollateralRef),
			Data:     brochure,
		})
	}

	for _, p := range products {
		if p == nil || !p.HasCollateral() {
			continue
		}
		file, ok := d.readOptional(ctx, d.Collateral, p.Attachment, lead.ID)
		if !ok {
			continue
		}
		msg.Attachments = append(msg.Attachments, mail.Attachment{
			Filename: path.Base(p.Attachment),
			Data:     file,
		})
	}

	body, err := mail.RenderFollowUp(data)
	if err != nil {
		return nil, err
	}
	msg.HTMLBody = body

	return msg, nil
}

// readOptional returns false when the file is absent or unreadable; a missing
// file never fails the notification.
func (d *NotificationDispatcher) readOptional(ctx context.Context, reader FileReader, ref string, leadID int64) ([]byte, bool) {
	if reader == nil || strings.TrimSpace(ref) == "" {
		return nil, false
	}

	data, err := reader.Read(ctx, ref)
	if errors.Is(err, storage.ErrNotFound) {
		d.Logger.Debug("attachment missing, skipped", zap.String("ref", ref), zap.Int64("lead_id", leadID))
		return nil, false
	}
	if err != nil {
		d.Logger.Warn("attachment unreadable, skipped", zap.String("ref", ref), zap.Int64("lead_id", leadID), zap.Error(err))
		return nil, false
	}
	return data, true
}

// send bounds the transport call. The caller's cancellation is ignored: the
// lead is already committed and the attempt runs to its own deadline.
func (d *NotificationDispatcher) send(ctx context.Context, msg *mail.Message) error {
	if d.Mailer == nil {
		return errors.New("mail transport not configured")
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.Settings.SendTimeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				errCh <- fmt.Errorf("mail transport panicked: %v", r)
			}
		}()
		errCh <- d.Mailer.Send(ctx, msg)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return fmt.Errorf("sending follow-up email: %w", ctx.Err())
	}
}

// productNames joins distinct names in order, or a generic phrase when none.
func productNames(products []*entity.Product) string {
	seen := make(map[string]struct{}, len(products))
	names := make([]string, 0, len(products))
	for _, p := range products {
		if p == nil || p.Name == "" {
			continue
		}
		if _, ok := seen[p.Name]; ok {
			continue
		}
		seen[p.Name] = struct{}{}
		names = append(names, p.Name)
	}
	if len(names) == 0 {
		return fallbackProductName
	}
	return strings.Join(names, ", ")
}
