package dialog

// User-facing texts
const (
	textChooseMenu     = "Выберите, что хотите сделать"
	textStorageDown    = "У нас что-то пошло не по плану, попробуй написать позже..."
	textUseButtons     = "Сделайте выбор кнопками внизу"
	textWelcome        = "Привет! Я покажу расписание занятий.\n\nВы студент или преподаватель?"
	textGroupExample   = "Напишите номер своей группы\n\nНапример: «ПИ21-1»"
	textTeacherExample = "Напишите свою фамилию\n\nНапример: «Иванов» или «Иванов Иван»"

	textGroupChangedFor = "Группа изменена на %s"
	textGroupFound      = "Группа %s"
	textGroupNotFound   = "Группа %s не найдена, попробуйте написать её ещё раз"
	textTimeoutError    = "Сервер расписания не отвечает, попробуйте позже"

	textWriteGroup           = "Напишите номер группы\n\nНапример: «ПИ21-1»"
	textWriteTeacher         = "Напишите фамилию преподавателя\n\nНапример: «Иванов»"
	textSearchingTeacher     = "Ищу преподавателя..."
	textFoundTeacher         = "Преподаватель %s"
	textChooseCurrentTeacher = "Нашлось несколько преподавателей, выберите нужного"
	textTeacherNotFound      = "Преподаватель не найден"
	textChooseTimedelta      = "Выберите, на какой период показать расписание"
	textCantFindUser         = "Не удалось найти выбранное расписание, попробуйте поиск ещё раз"
	textWhatToFind           = "Чьё расписание найти?"

	textCantGetSchedule        = "Не удалось получить расписание, попробуйте позже"
	textWriteDate              = "Напишите дату в формате «ДД.ММ» или «ДД.ММ.ГГГГ»\n\nНапример: «15.03»"
	textIncorrectDate          = "Неверный формат даты, нужно «ДД.ММ» или «ДД.ММ.ГГГГ»"
	textCantFindScheduleByDate = "Не удалось найти расписание на %s"

	textWhatToSet      = "Что хотите настроить?"
	textGroupsShown    = "Список групп будет отображаться в расписании"
	textGroupsHidden   = "Список групп не будет отображаться в расписании"
	textLocationShown  = "Список корпусов будет отображаться в расписании"
	textLocationHidden = "Список корпусов не будет отображаться в расписании"
	textUnknownSetting = "Неизвестная настройка"

	textSubscribeWriteTime  = "Напишите или выберите время, в которое хотите получать расписание\n\nНапример: «12:35»"
	textIncorrectTime       = "Неверный формат времени, нужно «ЧЧ:ММ»"
	textSubscribeTimeSet    = "Формируем расписание для %s %s в %s"
	textSubscribeChooseDays = "Выберите период, на который вы хотите получать расписание"
	textSubscribed          = "Вы подписались на расписание %s %s\nТеперь каждый день в %s вы будете получать расписание на %s"
	textSubscribeFailed     = "Не удалось добавить в рассылку расписания"
	textUnsubscribed        = "Вы отписались от рассылки расписания"

	textCalendarStub = "(¬‿¬)"
)
