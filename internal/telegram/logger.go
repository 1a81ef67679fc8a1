package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kapu/turn-queue-bot-go/internal/util"
	"go.uber.org/zap"
)

// maxLibraryLogRunes caps library lines, which in debug mode carry whole
// request and response bodies.
const maxLibraryLogRunes = 2000

// BotLogger routes the library's log output into zap at debug level.
type BotLogger struct {
	logger *zap.Logger
}

var _ tgbotapi.BotLogger = (*BotLogger)(nil)

func NewBotLogger(logger *zap.Logger) *BotLogger {
	return &BotLogger{logger: logger.Named("tgbotapi")}
}

func (l *BotLogger) Println(v ...interface{}) {
	l.logger.Debug(util.TruncateString(strings.TrimSpace(fmt.Sprintln(v...)), maxLibraryLogRunes))
}

func (l *BotLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug(util.TruncateString(strings.TrimSpace(fmt.Sprintf(format, v...)), maxLibraryLogRunes))
}
