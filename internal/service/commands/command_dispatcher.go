package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/domain/models"
	"github.com/mamadbah2/stocktake/internal/service/access"
	"github.com/mamadbah2/stocktake/internal/service/query"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not yet support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

// maxListed caps how many items a chat reply lists.
const maxListed = 20

// HelpText lists the supported commands.
const HelpText = "Commands:\n" +
	"/stock [search] - items in stock\n" +
	"/shopping - items to reorder (owner)\n" +
	"/expiry [today|tomorrow|later] - items by expiry\n" +
	"/set <id> <quantity> - update a quantity\n" +
	"/help - this message"

// Inventory is the part of the inventory store the dispatcher needs.
type Inventory interface {
	Items() []models.Item
	UpdateItem(sess models.Session, id int64, patch models.ItemPatch) (models.Item, error)
}

// Dispatcher executes parsed chat commands on behalf of a session.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sess models.Session) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	inventory Inventory
	logger    *zap.Logger
	now       func() time.Time
}

// NewService constructs a command dispatcher.
func NewService(inventory Inventory, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		inventory: inventory,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleCommand runs cmd and returns the reply text.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sess models.Session) (string, error) {
	s.logger.Debug("dispatching command",
		zap.String("command", string(cmd.Type)),
		zap.String("uid", sess.UserID),
		zap.Any("args", cmd.Args))

	switch cmd.Type {
	case models.CommandStock:
		if err := access.Authorize(sess.Role, access.ActionViewStock); err != nil {
			return "", err
		}
		view := query.Stock(s.inventory.Items(), query.AllCategories, strings.Join(cmd.Args, " "), query.SortByName, true)
		return formatList("Stock", view.Items, func(i models.Item) string {
			return fmt.Sprintf("%s: %d (%s) #%d", i.Name, i.Quantity, i.Level, i.ID)
		}), nil
	case models.CommandShopping:
		if err := access.Authorize(sess.Role, access.ActionViewShopping); err != nil {
			return "", err
		}
		items := query.SortBy(query.ShoppingList(s.inventory.Items()), query.SortByName, true)
		return formatList("Shopping list", items, func(i models.Item) string {
			return fmt.Sprintf("%s: %d left, reorder at %d", i.Name, i.Quantity, i.Threshold)
		}), nil
	case models.CommandExpiry:
		if err := access.Authorize(sess.Role, access.ActionViewExpiry); err != nil {
			return "", err
		}
		bucket := models.ExpiryToday
		if len(cmd.Args) > 0 {
			b, ok := models.ParseExpiryBucket(strings.ToLower(cmd.Args[0]))
			if !ok {
				return "", ErrInvalidArguments
			}
			bucket = b
		}
		items := query.SortBy(query.ByExpiry(s.inventory.Items(), bucket, s.now()), query.SortByExpiry, true)
		return formatList("Expiring "+string(bucket), items, func(i models.Item) string {
			return fmt.Sprintf("%s: %s", i.Name, i.Expiry)
		}), nil
	case models.CommandSet:
		return s.setQuantity(cmd, sess)
	case models.CommandHelp:
		return HelpText, nil
	default:
		return "", ErrUnsupportedCommand
	}
}

func (s *Service) setQuantity(cmd models.Command, sess models.Session) (string, error) {
	if len(cmd.Args) != 2 {
		return "", ErrInvalidArguments
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(cmd.Args[0], "#"), 10, 64)
	if err != nil {
		return "", ErrInvalidArguments
	}
	qty, err := strconv.Atoi(cmd.Args[1])
	if err != nil {
		return "", ErrInvalidArguments
	}

	item, err := s.inventory.UpdateItem(sess, id, models.ItemPatch{Quantity: &qty})
	if models.Failed(err) {
		return "", err
	}

	message := fmt.Sprintf("%s set to %d (%s).", item.Name, item.Quantity, item.Level)
	if err != nil {
		s.logger.Warn("quantity updated without persisting", zap.Int64("item_id", id), zap.Error(err))
		message += " Warning: the change could not be saved."
	}
	return message, nil
}

func formatList(title string, items []models.Item, line func(models.Item) string) string {
	if len(items) == 0 {
		return title + ": nothing to show."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d):", title, len(items))
	for i, item := range items {
		if i == maxListed {
			fmt.Fprintf(&b, "\n...and %d more", len(items)-maxListed)
			break
		}
		b.WriteString("\n- ")
		b.WriteString(line(item))
	}
	return b.String()
}
