package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/wyfcoding/optionpricing/internal/pricing/application"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/internal/pricing/infrastructure/client"
	"github.com/wyfcoding/optionpricing/pkg/config"
	"github.com/wyfcoding/optionpricing/pkg/mq"
)

type priceArgs struct {
	cmd           application.PriceOptionCommand
	engineURL     string
	engineTimeout time.Duration
}

var rootCmd = &cobra.Command{
	Use:          "pricectl",
	Short:        "Option pricing command line tools",
	SilenceUsage: true,
}

func main() {
	_ = godotenv.Load()

	rootCmd.AddCommand(newPriceCmd(), newImpliedVolCmd(), newEventsCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newPriceCmd() *cobra.Command {
	var args priceArgs
	c := &cobra.Command{
		Use:   "price",
		Short: "Price one option in-process and print price and Greeks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPrice(cmd, args)
		},
	}

	f := c.Flags()
	f.StringVar(&args.cmd.Symbol, "symbol", "CLI", "underlying asset id")
	f.StringVar(&args.cmd.OptionStyle, "style", "EUROPEAN", "EUROPEAN, AMERICAN, BARRIER or ASIAN")
	f.StringVar(&args.cmd.OptionType, "type", "CALL", "CALL or PUT")
	f.Float64Var(&args.cmd.StrikePrice, "strike", 100, "strike price")
	f.Float64Var(&args.cmd.TimeToExpiry, "expiry", 1, "time to expiry in years")
	f.StringVar(&args.cmd.PricingModel, "model", "", "BLACK_SCHOLES, BINOMIAL or MERTON_JUMP_DIFFUSION")
	f.IntVar(&args.cmd.BinomialSteps, "steps", 0, "binomial lattice steps (0 = default)")
	f.Float64Var(&args.cmd.JumpIntensity, "jump-intensity", 0, "Merton jump intensity")
	f.Float64Var(&args.cmd.JumpMean, "jump-mean", 0, "Merton mean log jump size")
	f.Float64Var(&args.cmd.JumpVolatility, "jump-vol", 0, "Merton jump volatility")
	f.Float64Var(&args.cmd.Barrier, "barrier", 0, "barrier level")
	f.StringVar(&args.cmd.BarrierType, "barrier-type", "", "DOWN_IN, DOWN_OUT, UP_IN or UP_OUT")
	f.Float64Var(&args.cmd.Rebate, "rebate", 0, "barrier rebate")
	f.StringVar(&args.cmd.AverageType, "average", "", "ARITHMETIC or GEOMETRIC")
	f.IntVar(&args.cmd.NumFixings, "fixings", 0, "number of averaging fixings")
	f.IntVar(&args.cmd.PastFixings, "past-fixings", 0, "fixings already observed")
	f.Float64Var(&args.cmd.RunningSum, "running-sum", 0, "sum (arithmetic) or product (geometric) of observed fixings")
	f.Float64Var(&args.cmd.UnderlyingPrice, "spot", 100, "spot price")
	f.Float64Var(&args.cmd.Volatility, "vol", 0.2, "annualised volatility")
	f.Float64Var(&args.cmd.RiskFreeRate, "rate", 0.05, "risk-free rate")
	f.StringVar(&args.engineURL, "engine-url", config.GetEnv("APP_PRICING_EXOTIC_ENGINE_URL", ""), "exotic pricing engine base url")
	f.DurationVar(&args.engineTimeout, "engine-timeout", 5*time.Second, "exotic pricing engine timeout")
	return c
}

func runPrice(cmd *cobra.Command, args priceArgs) error {
	engine := client.NewExoticEngine(args.engineURL, args.engineTimeout)
	factory, err := application.NewInstrumentFactory("", 0, engine)
	if err != nil {
		return err
	}
	inst, model, err := factory.Build(args.cmd.ContractSpec, time.Now())
	if err != nil {
		return err
	}
	v, err := domain.Value(inst, args.cmd.MarketData())
	if err != nil {
		return err
	}

	rho := "n/a"
	if v.HasRho {
		rho = formatFloat(v.Greeks.Rho)
	}
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Instrument", "Model", "Price", "Delta", "Gamma", "Vega", "Theta", "Rho"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.Append([]string{
		inst.InstrumentType(),
		model,
		formatFloat(v.Price),
		formatFloat(v.Greeks.Delta),
		formatFloat(v.Greeks.Gamma),
		formatFloat(v.Greeks.Vega),
		formatFloat(v.Greeks.Theta),
		rho,
	})
	table.Render()
	return nil
}

func newImpliedVolCmd() *cobra.Command {
	var (
		optionType  string
		marketPrice float64
		spot        float64
		strike      float64
		rate        float64
		expiry      float64
	)
	c := &cobra.Command{
		Use:   "iv",
		Short: "Solve Black-Scholes implied volatility from a market price",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := domain.ParseOptionType(optionType)
			if err != nil {
				return err
			}
			vol, err := domain.ImpliedVolatility(t, marketPrice, spot, strike, rate, expiry)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "implied volatility: %s\n", formatFloat(vol))
			return nil
		},
	}
	f := c.Flags()
	f.StringVar(&optionType, "type", "CALL", "CALL or PUT")
	f.Float64Var(&marketPrice, "price", 0, "observed option price")
	f.Float64Var(&spot, "spot", 100, "spot price")
	f.Float64Var(&strike, "strike", 100, "strike price")
	f.Float64Var(&rate, "rate", 0.05, "risk-free rate")
	f.Float64Var(&expiry, "expiry", 1, "time to expiry in years")
	_ = c.MarkFlagRequired("price")
	return c
}

func newEventsCmd() *cobra.Command {
	events := &cobra.Command{
		Use:   "events",
		Short: "Inspect pricing domain events",
	}

	var (
		brokers string
		topic   string
		eventTy string
	)
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Follow the pricing events topic from the latest offset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			consumer, err := mq.NewConsumer(mq.KafkaConfig{Brokers: strings.Split(brokers, ",")}, topic)
			if err != nil {
				return err
			}
			defer consumer.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return tailEvents(ctx, consumer, cmd, eventTy)
		},
	}
	f := tail.Flags()
	f.StringVar(&brokers, "brokers", config.GetEnv("APP_KAFKA_BROKERS", "localhost:9092"), "comma separated kafka brokers")
	f.StringVar(&topic, "topic", config.GetEnv("APP_KAFKA_TOPIC", "pricing.events"), "events topic")
	f.StringVar(&eventTy, "type", "", "only print events of this type")
	events.AddCommand(tail)
	return events
}

func tailEvents(ctx context.Context, consumer *mq.KafkaConsumer, cmd *cobra.Command, eventType string) error {
	out := cmd.OutOrStdout()
	for {
		msg, err := consumer.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if eventType != "" && msg.Headers["event_type"] != eventType {
			continue
		}
		var payload map[string]any
		if err := msg.UnmarshalPayload(&payload); err != nil {
			fmt.Fprintf(out, "%s skipping malformed payload at offset %d: %v\n", msg.Time.Format(time.RFC3339), msg.Offset, err)
			continue
		}
		fmt.Fprintf(out, "%s %-24s key=%s offset=%d %s\n",
			msg.Time.Format(time.RFC3339), msg.Headers["event_type"], msg.Key, msg.Offset, msg.Value)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
