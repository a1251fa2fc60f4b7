package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	"github.com/quantumtecofficial/ar-study-buddy/internal/ai"
	"github.com/quantumtecofficial/ar-study-buddy/internal/assistant"
	"github.com/quantumtecofficial/ar-study-buddy/internal/audio"
	"github.com/quantumtecofficial/ar-study-buddy/internal/config"
	"github.com/quantumtecofficial/ar-study-buddy/internal/hub"
	"github.com/quantumtecofficial/ar-study-buddy/internal/interpreter"
	"github.com/quantumtecofficial/ar-study-buddy/internal/ipc"
	"github.com/quantumtecofficial/ar-study-buddy/internal/notify"
	"github.com/quantumtecofficial/ar-study-buddy/internal/output"
	"github.com/quantumtecofficial/ar-study-buddy/internal/proxy"
	"github.com/quantumtecofficial/ar-study-buddy/internal/skills"
	"github.com/quantumtecofficial/ar-study-buddy/internal/tts"
	"github.com/quantumtecofficial/ar-study-buddy/pkg/audioconv"
	"github.com/quantumtecofficial/ar-study-buddy/pkg/stt"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	proxyAddr := cli.StringP("proxy", "p", "", "Socks proxy address for provider traffic")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	textOnly := cli.BoolP("text", "t", false, "Disable microphone capture")
	staticDir := cli.StringP("static", "s", "", "Static frontend directory")
	chime := cli.StringP("chime", "c", "beep.mp3", "Acknowledgment chime file")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	log.Info("Booting up")

	godotenv.Load(*envFile)
	cfg := config.FromEnv()

	var httpClient *http.Client
	if *proxyAddr != "" {
		var err error
		httpClient, err = proxy.NewSocksClient(*proxyAddr, 120*time.Second)
		if err != nil {
			log.Error("Failed to dial socks proxy", "proxy", *proxyAddr, "err", err)
			os.Exit(1)
		}
		log.Debug("Loaded proxy")
	}

	if cfg.OpenAIKey == "" {
		log.Warn("OPENAI_API_KEY not set, primary provider disabled")
	}
	if cfg.GroqKey == "" {
		log.Warn("GROQ_API_KEY not set, secondary provider disabled")
	}

	brain := ai.NewChain(
		ai.NewOpenAI(cfg.OpenAIKey, httpClient),
		ai.NewGroq(cfg.GroqKey, httpClient),
		ai.NewPollinations(httpClient),
	)

	search := skills.NewDuckDuckGo(httpClient)
	weather := skills.NewWeather(search)
	wiki := skills.NewWikipedia(httpClient)
	notes := skills.NewNotebook(cfg.NotesFile)

	h := hub.New()
	go h.Run()

	// Capture is best-effort: a missing device or model degrades the
	// daemon to text-only mode instead of failing boot.
	var (
		listener assistant.Listener = assistant.Idle{}
		rec      *audio.Recorder
		whisper  *stt.Transcriber
	)
	if !*textOnly {
		rec = audio.NewRecorder()
		if err := rec.Init(); err != nil {
			log.Warn("No capture device, running text-only", "err", err)
			rec = nil
		}
	}
	if rec != nil {
		var err error
		whisper, err = stt.NewTranscriber(cfg.WhisperModel)
		if err != nil {
			log.Warn("Failed to load whisper model, running text-only", "err", err)
			rec.Close()
			rec = nil
		}
	}
	if rec != nil {
		defer rec.Close()
		defer whisper.Close()
		listener = audio.NewMicrophone(rec, whisper, 5*time.Second)
		log.Debug("Loaded recorder and whisper")
	}

	var speech output.Speaker = tts.Espeak{}
	if *textOnly {
		speech = tts.Silent{}
	}
	sink := output.New(speech, h, audio.NewDucker([]string{"espeak", "espeak-ng"}, 20))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var loop *assistant.Loop
	interp := interpreter.New(interpreter.Config{
		Search:  search,
		Weather: weather,
		Wiki:    wiki,
		Notes:   notes,
		Brain:   brain,
		Sink:    sink,
		Stop: func() {
			loop.Stop()
			cancel()
		},
	})
	loop = assistant.NewLoop(listener, interp, sink, cfg.WakeWord)

	h.OnCommand = func(text string) {
		utterance := strings.ToLower(strings.TrimSpace(text))
		if utterance == "" {
			return
		}
		log.Info("Command via UI", "text", utterance)
		interp.Interpret(ctx, utterance)
	}
	if whisper != nil {
		tr := whisper
		h.OnAudio = func(clip []byte) {
			pcm, err := audioconv.DecodeToPCM16k(clip, audioconv.Options{MaxSamples: 16000 * 30})
			if err != nil {
				log.Warn("Failed to decode audio clip", "err", err)
				return
			}
			text, err := tr.Transcribe(ctx, pcm)
			if err != nil {
				log.Warn("Failed to transcribe clip", "err", err)
				return
			}
			utterance := strings.ToLower(strings.TrimSpace(text))
			if utterance == "" {
				return
			}
			sink.Emit("user_speak", map[string]any{"text": utterance})
			interp.Interpret(ctx, utterance)
		}
	}

	if err := ipc.StartServer(func(msg ipc.ControlMessage) {
		switch msg.Cmd {
		case "trigger":
			handleTrigger(ctx, listener, interp, sink, *chime, cfg.WakeWord)
		case "say":
			if text := strings.ToLower(strings.TrimSpace(msg.Text)); text != "" {
				interp.Interpret(ctx, text)
			}
		case "stop":
			loop.Stop()
			cancel()
		default:
			log.Warn("Unknown command", "cmd", msg.Cmd)
		}
	}); err != nil {
		log.Error("Failed ipc server", "err", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWS)
	if *staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(*staticDir)))
	}
	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: mux}
	go func() {
		log.Info("UI transport listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed http server", "err", err)
		}
	}()

	go loop.Run(ctx)

	log.Info("Boot up - successful")

	<-ctx.Done()
	loop.Stop()

	shutdownCtx, release := context.WithTimeout(context.Background(), 3*time.Second)
	defer release()
	srv.Shutdown(shutdownCtx)
}

// handleTrigger is the one-shot capture path: chime, listen once, strip
// the wake word if present, interpret.
func handleTrigger(ctx context.Context, listener assistant.Listener, interp *interpreter.Interpreter, sink *output.Sink, chime, wake string) {
	if err := notify.Chime(chime); err != nil {
		log.Debug("Chime unavailable", "err", err)
	}

	log.Info("Starting listening")

	utterance, err := listener.Listen(ctx)
	if err != nil || utterance == "" {
		log.Warn("Nothing captured", "err", err)
		return
	}

	sink.Emit("user_speak", map[string]any{"text": utterance})

	command := strings.TrimSpace(strings.ReplaceAll(utterance, wake, ""))
	if command == "" {
		return
	}
	interp.Interpret(ctx, command)
}
