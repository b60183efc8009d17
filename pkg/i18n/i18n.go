package i18n

type Messages struct {
	MenuTitle        string
	MenuSearch       string
	MenuDerive       string
	MenuProviders    string
	MenuExit         string
	UnknownCommand   string
	PartialPrompt    string
	WordsPrompt      string
	ChainsPrompt     string
	BadInput         string
	SearchStarted    string
	SearchStopped    string
	SearchFound      string
	SearchSummary    string
	PhrasePrompt     string
	CheckPrompt      string
	InvalidPhrase    string
	SecretsHidden    string
	Uncertain        string
	NotChecked       string
	ExplanationTitle string
	SummaryTitle     string
	ProvidersHeader  string
	ProviderLine     string
	ProviderOff      string
}

func Get(lang string) Messages {
	switch lang {
	case "en":
		return Messages{
			MenuTitle:        "SeedSleuth — start menu",
			MenuSearch:       "1) Search for a funded seed phrase",
			MenuDerive:       "2) Derive wallets of one seed phrase",
			MenuProviders:    "3) Show balance providers (configs/providers.yaml)",
			MenuExit:         "Press enter to exit",
			UnknownCommand:   "Unknown command:",
			PartialPrompt:    "Known leading words (input hidden, Enter for none): ",
			WordsPrompt:      "Phrase length, 12 or 24 (default 12): ",
			ChainsPrompt:     "Chains for the quick check, e.g. eth,btc (Enter for all): ",
			BadInput:         "Bad input: %v\n",
			SearchStarted:    "Search started, Ctrl+C to stop. Logs: %s\n",
			SearchStopped:    "Search stopped after %d attempts (%s).\n",
			SearchFound:      "FOUND after %d attempts (%s).\n",
			SearchSummary:    "state=%s attempts=%d checks=%d\n",
			PhrasePrompt:     "Seed phrase (input hidden): ",
			CheckPrompt:      "Check balances? (y/n): ",
			InvalidPhrase:    "Invalid seed phrase: %v\n",
			SecretsHidden:    "(secrets hidden, set hide_secrets_in_console: false to show them)",
			Uncertain:        "uncertain",
			NotChecked:       "not checked",
			ExplanationTitle: "--- explanation ---",
			SummaryTitle:     "--- summary ---",
			ProvidersHeader:  "=== balance providers (timeout %s) ===\n",
			ProviderLine:     "%-9s %s  rate=%d/s  key=%v\n",
			ProviderOff:      "%-9s disabled\n",
		}
	default: // "ru"
		return Messages{
			MenuTitle:        "SeedSleuth — стартовое меню",
			MenuSearch:       "1) Поиск сид-фразы с балансом",
			MenuDerive:       "2) Вывести кошельки одной сид-фразы",
			MenuProviders:    "3) Показать провайдеры балансов (configs/providers.yaml)",
			MenuExit:         "Enter для выхода",
			UnknownCommand:   "Неизвестная команда:",
			PartialPrompt:    "Известные первые слова (ввод скрыт, Enter если нет): ",
			WordsPrompt:      "Длина фразы, 12 или 24 (по умолчанию 12): ",
			ChainsPrompt:     "Сети для быстрой проверки, например eth,btc (Enter для всех): ",
			BadInput:         "Некорректный ввод: %v\n",
			SearchStarted:    "Поиск запущен, Ctrl+C для остановки. Логи: %s\n",
			SearchStopped:    "Поиск остановлен после %d попыток (%s).\n",
			SearchFound:      "НАЙДЕНО после %d попыток (%s).\n",
			SearchSummary:    "state=%s attempts=%d checks=%d\n",
			PhrasePrompt:     "Сид-фраза (ввод скрыт): ",
			CheckPrompt:      "Проверить балансы? (y/n): ",
			InvalidPhrase:    "Некорректная сид-фраза: %v\n",
			SecretsHidden:    "(секреты скрыты, hide_secrets_in_console: false чтобы показать)",
			Uncertain:        "не подтверждено",
			NotChecked:       "не проверено",
			ExplanationTitle: "--- пояснение ---",
			SummaryTitle:     "--- сводка ---",
			ProvidersHeader:  "=== провайдеры балансов (таймаут %s) ===\n",
			ProviderLine:     "%-9s %s  rate=%d/s  key=%v\n",
			ProviderOff:      "%-9s выключен\n",
		}
	}
}
