package f4

import (
	"strconv"

	"omibyte.io/stm32hal/cortexm"
)

// IRQ is a device interrupt number of the STM32F405/407.
type IRQ int16

const (
	WWDG IRQ = iota
	PVD
	TampStamp
	RTCWakeup
	Flash
	RCC
	EXTI0
	EXTI1
	EXTI2
	EXTI3
	EXTI4
	DMA1Stream0
	DMA1Stream1
	DMA1Stream2
	DMA1Stream3
	DMA1Stream4
	DMA1Stream5
	DMA1Stream6
	ADC
	CAN1TX
	CAN1RX0
	CAN1RX1
	CAN1SCE
	EXTI9_5
	TIM1BrkTIM9
	TIM1UpTIM10
	TIM1TrgComTIM11
	TIM1CC
	TIM2
	TIM3
	TIM4
	I2C1EV
	I2C1ER
	I2C2EV
	I2C2ER
	SPI1
	SPI2
	USART1
	USART2
	USART3
	EXTI15_10
	RTCAlarm
	OTGFSWakeup
	TIM8BrkTIM12
	TIM8UpTIM13
	TIM8TrgComTIM14
	TIM8CC
	DMA1Stream7
	FSMC
	SDIO
	TIM5
	SPI3
	UART4
	UART5
	TIM6DAC
	TIM7
	DMA2Stream0
	DMA2Stream1
	DMA2Stream2
	DMA2Stream3
	DMA2Stream4
	ETH
	ETHWakeup
	CAN2TX
	CAN2RX0
	CAN2RX1
	CAN2SCE
	OTGFS
	DMA2Stream5
	DMA2Stream6
	DMA2Stream7
	USART6
	I2C3EV
	I2C3ER
	OTGHSEP1Out
	OTGHSEP1In
	OTGHSWakeup
	OTGHS
	DCMI
	CRYP
	HashRNG
	FPU

	// NumIRQs is the number of device interrupt slots.
	NumIRQs = iota
)

// PriorityBits is the number of implemented NVIC priority bits.
const PriorityBits = 4

var irqNames = [NumIRQs]string{
	"WWDG", "PVD", "TAMP_STAMP", "RTC_WKUP", "FLASH", "RCC",
	"EXTI0", "EXTI1", "EXTI2", "EXTI3", "EXTI4",
	"DMA1_Stream0", "DMA1_Stream1", "DMA1_Stream2", "DMA1_Stream3",
	"DMA1_Stream4", "DMA1_Stream5", "DMA1_Stream6",
	"ADC", "CAN1_TX", "CAN1_RX0", "CAN1_RX1", "CAN1_SCE", "EXTI9_5",
	"TIM1_BRK_TIM9", "TIM1_UP_TIM10", "TIM1_TRG_COM_TIM11", "TIM1_CC",
	"TIM2", "TIM3", "TIM4",
	"I2C1_EV", "I2C1_ER", "I2C2_EV", "I2C2_ER",
	"SPI1", "SPI2", "USART1", "USART2", "USART3", "EXTI15_10",
	"RTC_Alarm", "OTG_FS_WKUP",
	"TIM8_BRK_TIM12", "TIM8_UP_TIM13", "TIM8_TRG_COM_TIM14", "TIM8_CC",
	"DMA1_Stream7", "FSMC", "SDIO", "TIM5", "SPI3", "UART4", "UART5",
	"TIM6_DAC", "TIM7",
	"DMA2_Stream0", "DMA2_Stream1", "DMA2_Stream2", "DMA2_Stream3", "DMA2_Stream4",
	"ETH", "ETH_WKUP", "CAN2_TX", "CAN2_RX0", "CAN2_RX1", "CAN2_SCE", "OTG_FS",
	"DMA2_Stream5", "DMA2_Stream6", "DMA2_Stream7", "USART6",
	"I2C3_EV", "I2C3_ER",
	"OTG_HS_EP1_OUT", "OTG_HS_EP1_IN", "OTG_HS_WKUP", "OTG_HS",
	"DCMI", "CRYP", "HASH_RNG", "FPU",
}

// IRQ converts to the core interrupt number.
func (i IRQ) IRQ() cortexm.IRQ { return cortexm.IRQ(i) }

func (i IRQ) String() string {
	if i >= 0 && i < NumIRQs {
		return irqNames[i]
	}
	return "IRQ(" + strconv.Itoa(int(i)) + ")"
}

// IRQNames returns the vector names of every device interrupt in number
// order.
func IRQNames() []string {
	return append([]string(nil), irqNames[:]...)
}

// NewVectorTable lays out the vector table of the STM32F405/407.
func NewVectorTable() (*cortexm.VectorTable, error) {
	return cortexm.NewVectorTable(irqNames[:])
}
